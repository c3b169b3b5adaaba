package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ASamedWalker/breakfast-buddy/internal/platform/ubereats"
	"github.com/ASamedWalker/breakfast-buddy/internal/suggestion"
)

// Generator runs one suggestion pipeline invocation.
type Generator interface {
	Generate(ctx context.Context, rc suggestion.RequestContext) (*suggestion.Result, error)
}

// RestaurantSearcher finds restaurants near a coordinate pair.
type RestaurantSearcher interface {
	SearchRestaurants(ctx context.Context, latitude, longitude float64) (json.RawMessage, error)
}

// Handler handles HTTP requests.
type Handler struct {
	Generator   Generator
	GeneratorV2 Generator
	Store       suggestion.Store
	Restaurants RestaurantSearcher
}

// NewHandler creates a new Handler.
func NewHandler(generator, generatorV2 Generator, store suggestion.Store, restaurants RestaurantSearcher) *Handler {
	return &Handler{Generator: generator, GeneratorV2: generatorV2, Store: store, Restaurants: restaurants}
}

type suggestionRequest struct {
	UserInput        string                      `json:"userInput"`
	UserPreferences  *suggestion.UserPreferences `json:"userPreferences,omitempty"`
	Mood             string                      `json:"mood,omitempty"`
	Weather          string                      `json:"weather,omitempty"`
	IncludeNutrition bool                        `json:"includeNutrition,omitempty"`
}

// GenerateSuggestion handles POST /suggestion.
func (h *Handler) GenerateSuggestion(c *gin.Context) {
	h.generate(c, h.Generator)
}

// GenerateSuggestionV2 handles POST /v2/suggestion using the alternate
// model provider.
func (h *Handler) GenerateSuggestionV2(c *gin.Context) {
	h.generate(c, h.GeneratorV2)
}

func (h *Handler) generate(c *gin.Context, generator Generator) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rc := suggestion.RequestContext{
		FreeText:         req.UserInput,
		Mood:             req.Mood,
		Weather:          req.Weather,
		IncludeNutrition: req.IncludeNutrition,
	}
	if req.UserPreferences != nil {
		rc.Preferences = *req.UserPreferences
	}

	// Cap the model round-trip so a stalled provider cannot hold the
	// request open indefinitely.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	result, err := generator.Generate(ctx, rc)
	if err != nil {
		if errors.Is(err, suggestion.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User input is required"})
			return
		}
		log.Error().Err(err).Msg("failed to generate suggestion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type saveSuggestionRequest struct {
	Suggestion suggestion.Suggestion `json:"suggestion" binding:"required"`
	Mood       string                `json:"mood,omitempty"`
	Weather    string                `json:"weather,omitempty"`
}

// SaveSuggestion handles POST /suggestions.
func (h *Handler) SaveSuggestion(c *gin.Context) {
	var req saveSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Suggestion.Item == "" || req.Suggestion.Description == "" || req.Suggestion.Source == "" ||
		req.Suggestion.EstimatedPrice == "" || req.Suggestion.Calories == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggestion fields must all be set"})
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	saved, err := h.Store.SaveSuggestion(ctx, req.Suggestion, req.Mood, req.Weather)
	if err != nil {
		log.Error().Err(err).Msg("failed to save suggestion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save suggestion"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// ListSuggestions handles GET /suggestions.
func (h *Handler) ListSuggestions(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	suggestions, err := h.Store.ListSuggestions(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list suggestions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestions"})
		return
	}
	if suggestions == nil {
		suggestions = []*suggestion.SavedSuggestion{}
	}

	c.JSON(http.StatusOK, suggestions)
}

type ratingRequest struct {
	Rating *int `json:"rating" binding:"required,min=0,max=5"`
}

// UpdateRating handles PUT /suggestions/:id/rating.
func (h *Handler) UpdateRating(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 0 and 5"})
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	if err := h.Store.UpdateRating(ctx, c.Param("id"), *req.Rating); err != nil {
		if errors.Is(err, suggestion.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}
		log.Error().Err(err).Msg("failed to update rating")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update rating"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleFavorite handles PUT /suggestions/:id/favorite.
func (h *Handler) ToggleFavorite(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	isFavorite, err := h.Store.ToggleFavorite(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, suggestion.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}
		log.Error().Err(err).Msg("failed to toggle favorite")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFavorite": isFavorite})
}

// DeleteSuggestion handles DELETE /suggestions/:id.
func (h *Handler) DeleteSuggestion(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	if err := h.Store.DeleteSuggestion(ctx, c.Param("id")); err != nil {
		if errors.Is(err, suggestion.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}
		log.Error().Err(err).Msg("failed to delete suggestion")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete suggestion"})
		return
	}

	c.Status(http.StatusNoContent)
}

type mealPlanRequest struct {
	SuggestionID string `json:"suggestionId" binding:"required"`
}

// SetMealPlanEntry handles PUT /mealplan/:date.
func (h *Handler) SetMealPlanEntry(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted yyyy-mm-dd"})
		return
	}

	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "suggestionId is required"})
		return
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	if err := h.Store.SetMealPlanEntry(ctx, date, req.SuggestionID); err != nil {
		log.Error().Err(err).Msg("failed to set meal plan entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set meal plan entry"})
		return
	}

	c.Status(http.StatusNoContent)
}

// GetMealPlan handles GET /mealplan?start=yyyy-mm-dd, returning the
// seven-day window beginning at start.
func (h *Handler) GetMealPlan(c *gin.Context) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be formatted yyyy-mm-dd"})
		return
	}
	end := start.AddDate(0, 0, 6)

	ctx, cancel := storeContext(c)
	defer cancel()

	entries, err := h.Store.GetMealPlanRange(ctx, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		log.Error().Err(err).Msg("failed to get meal plan")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get meal plan"})
		return
	}
	if entries == nil {
		entries = []*suggestion.MealPlanEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// GetAnalytics handles GET /analytics, counting mood and weather
// contexts across saved suggestions.
func (h *Handler) GetAnalytics(c *gin.Context) {
	ctx, cancel := storeContext(c)
	defer cancel()

	moods, weathers, err := h.Store.GetMoodWeatherCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get analytics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"moodCounts": moods, "weatherCounts": weathers})
}

// SearchRestaurants handles GET /restaurants/search.
func (h *Handler) SearchRestaurants(c *gin.Context) {
	latitude, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	longitude, lngErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Latitude and longitude are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	payload, err := h.Restaurants.SearchRestaurants(ctx, latitude, longitude)
	if err != nil {
		log.Error().Err(err).Msg("restaurant search failed")
		var apiErr *ubereats.APIError
		if errors.As(err, &apiErr) {
			c.JSON(apiErr.StatusCode, gin.H{"error": "Uber API Error: " + apiErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No response received from Uber API"})
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

func storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 5*time.Second)
}
