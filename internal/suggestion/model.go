package suggestion

import (
	"strings"
	"time"
)

// Calorie preference levels accepted in UserPreferences.
const (
	CalorieLow    = "low"
	CalorieMedium = "medium"
	CalorieHigh   = "high"
)

// UserPreferences captures the dietary context a user has saved.
// Absent list fields behave as empty lists; an absent calorie
// preference defaults to medium.
type UserPreferences struct {
	DietaryRestrictions []string `json:"dietaryRestrictions"`
	Allergies           []string `json:"allergies"`
	FavoriteIngredients []string `json:"favoriteIngredients"`
	DislikedIngredients []string `json:"dislikedIngredients"`
	CaloriePreference   string   `json:"caloriePreference,omitempty"`
}

// Normalize lowercases the calorie preference and applies the default.
func (p *UserPreferences) Normalize() {
	switch strings.ToLower(p.CaloriePreference) {
	case CalorieLow:
		p.CaloriePreference = CalorieLow
	case CalorieHigh:
		p.CaloriePreference = CalorieHigh
	default:
		p.CaloriePreference = CalorieMedium
	}
}

// RequestContext is the immutable input to a single suggestion request.
type RequestContext struct {
	FreeText         string
	Preferences      UserPreferences
	Mood             string
	Weather          string
	IncludeNutrition bool
}

// Suggestion is the structured result of one pipeline run. Every field
// is non-empty once the pipeline has accepted it.
type Suggestion struct {
	Item           string `json:"item" db:"item"`
	Description    string `json:"description" db:"description"`
	Source         string `json:"source" db:"source"`
	EstimatedPrice string `json:"estimatedPrice" db:"estimated_price"`
	Calories       string `json:"calories" db:"calories"`
}

// DetailedNutritionInfo holds the macronutrient breakdown in grams.
// Present only when the model reply contained a nutrition block.
type DetailedNutritionInfo struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
	Fiber   float64 `json:"fiber"`
	Sugar   float64 `json:"sugar"`
}

// SavedSuggestion is a Suggestion the user kept, with rating and the
// mood/weather context captured at save time.
type SavedSuggestion struct {
	Suggestion
	ID         string    `json:"id" db:"id"`
	Rating     int       `json:"rating" db:"rating"`
	IsFavorite bool      `json:"isFavorite" db:"is_favorite"`
	Mood       string    `json:"mood,omitempty" db:"mood"`
	Weather    string    `json:"weather,omitempty" db:"weather"`
	Date       time.Time `json:"date" db:"created_at"`
}

// MealPlanEntry assigns a saved suggestion to a calendar date (yyyy-mm-dd).
type MealPlanEntry struct {
	Date         string `json:"date" db:"plan_date"`
	SuggestionID string `json:"suggestionId" db:"suggestion_id"`
}
