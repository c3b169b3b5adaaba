package suggestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a saved suggestion id has no record.
var ErrNotFound = errors.New("suggestion not found")

// Store defines the persistence operations for saved suggestions and
// the weekly meal plan.
type Store interface {
	SaveSuggestion(ctx context.Context, s Suggestion, mood, weather string) (*SavedSuggestion, error)
	ListSuggestions(ctx context.Context) ([]*SavedSuggestion, error)
	UpdateRating(ctx context.Context, id string, rating int) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	DeleteSuggestion(ctx context.Context, id string) error
	SetMealPlanEntry(ctx context.Context, date, suggestionID string) error
	GetMealPlanRange(ctx context.Context, start, end string) ([]*MealPlanEntry, error)
	GetMoodWeatherCounts(ctx context.Context) (map[string]int, map[string]int, error)
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the database and creates the schema if
// it does not exist.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS saved_suggestions (
		id TEXT PRIMARY KEY,
		item TEXT NOT NULL,
		description TEXT NOT NULL,
		source TEXT NOT NULL,
		estimated_price TEXT NOT NULL,
		calories TEXT NOT NULL,
		rating INTEGER NOT NULL DEFAULT 0,
		is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
		mood TEXT NOT NULL DEFAULT '',
		weather TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create saved_suggestions table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS meal_plan (
		plan_date TEXT PRIMARY KEY,
		suggestion_id TEXT NOT NULL REFERENCES saved_suggestions(id) ON DELETE CASCADE
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create meal_plan table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// SaveSuggestion stores a suggestion with the mood and weather context
// at save time and returns the persisted record.
func (s *PostgresStore) SaveSuggestion(ctx context.Context, sg Suggestion, mood, weather string) (*SavedSuggestion, error) {
	saved := &SavedSuggestion{
		Suggestion: sg,
		ID:         uuid.NewString(),
		Mood:       mood,
		Weather:    weather,
		Date:       time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO saved_suggestions (id, item, description, source, estimated_price, calories, rating, is_favorite, mood, weather, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		saved.ID,
		saved.Item,
		saved.Description,
		saved.Source,
		saved.EstimatedPrice,
		saved.Calories,
		saved.Rating,
		saved.IsFavorite,
		saved.Mood,
		saved.Weather,
		saved.Date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save suggestion: %w", err)
	}

	return saved, nil
}

// ListSuggestions returns all saved suggestions, newest first.
func (s *PostgresStore) ListSuggestions(ctx context.Context) ([]*SavedSuggestion, error) {
	var suggestions []*SavedSuggestion
	err := s.db.SelectContext(ctx, &suggestions,
		"SELECT id, item, description, source, estimated_price, calories, rating, is_favorite, mood, weather, created_at FROM saved_suggestions ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return suggestions, nil
}

// UpdateRating sets the rating (0-5) of a saved suggestion.
func (s *PostgresStore) UpdateRating(ctx context.Context, id string, rating int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE saved_suggestions SET rating = $1 WHERE id = $2", rating, id)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return requireRow(res)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *PostgresStore) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	var isFavorite bool
	err := s.db.QueryRowContext(ctx,
		"UPDATE saved_suggestions SET is_favorite = NOT is_favorite WHERE id = $1 RETURNING is_favorite", id).Scan(&isFavorite)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return isFavorite, nil
}

// DeleteSuggestion removes a saved suggestion and any meal plan entries
// that reference it.
func (s *PostgresStore) DeleteSuggestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM saved_suggestions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete suggestion: %w", err)
	}
	return requireRow(res)
}

// SetMealPlanEntry assigns a saved suggestion to a date, replacing any
// existing meal on that date.
func (s *PostgresStore) SetMealPlanEntry(ctx context.Context, date, suggestionID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meal_plan (plan_date, suggestion_id) VALUES ($1, $2) ON CONFLICT (plan_date) DO UPDATE SET suggestion_id = $2",
		date, suggestionID)
	if err != nil {
		return fmt.Errorf("failed to set meal plan entry: %w", err)
	}
	return nil
}

// GetMealPlanRange returns the entries between start and end inclusive.
func (s *PostgresStore) GetMealPlanRange(ctx context.Context, start, end string) ([]*MealPlanEntry, error) {
	var entries []*MealPlanEntry
	err := s.db.SelectContext(ctx, &entries,
		"SELECT plan_date, suggestion_id FROM meal_plan WHERE plan_date >= $1 AND plan_date <= $2 ORDER BY plan_date", start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get meal plan range: %w", err)
	}
	return entries, nil
}

// GetMoodWeatherCounts aggregates how often each mood and weather
// context appears across saved suggestions.
func (s *PostgresStore) GetMoodWeatherCounts(ctx context.Context) (map[string]int, map[string]int, error) {
	moods := make(map[string]int)
	weathers := make(map[string]int)

	rows, err := s.db.QueryContext(ctx,
		"SELECT mood, weather FROM saved_suggestions WHERE mood <> '' OR weather <> ''")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query mood/weather counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mood, weather string
		if err := rows.Scan(&mood, &weather); err != nil {
			return nil, nil, fmt.Errorf("failed to scan mood/weather row: %w", err)
		}
		if mood != "" {
			moods[mood]++
		}
		if weather != "" {
			weathers[weather]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows error: %w", err)
	}

	return moods, weathers, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
