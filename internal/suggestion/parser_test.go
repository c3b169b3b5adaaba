package suggestion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const wellFormedReply = `Item: Greek Yogurt Parfait
Description: Yogurt with granola and berries
Location: Whole Foods
Price: $5.99
Calories: 320 cal`

func TestParse(t *testing.T) {
	parsed, err := Parse(wellFormedReply)
	assert.NoError(t, err)
	assert.Equal(t, "Greek Yogurt Parfait", parsed.Item)
	assert.Equal(t, "Yogurt with granola and berries", parsed.Description)
	assert.Equal(t, "Whole Foods", parsed.Location)
	assert.Equal(t, "$5.99", parsed.Price)
	assert.Equal(t, "320 cal", parsed.Calories)
	assert.False(t, parsed.HasNutrition)
}

func TestParse_TrimsWhitespaceAndIgnoresOrder(t *testing.T) {
	reply := `Calories:   350 cal
Price: $4.50
Location:  7-Eleven
Description:   Egg and cheese on a roll
Item:  Breakfast Sandwich  `

	parsed, err := Parse(reply)
	assert.NoError(t, err)
	assert.Equal(t, "Breakfast Sandwich", parsed.Item)
	assert.Equal(t, "Egg and cheese on a roll", parsed.Description)
	assert.Equal(t, "7-Eleven", parsed.Location)
	assert.Equal(t, "350 cal", parsed.Calories)
}

func TestParse_CaseInsensitiveLabels(t *testing.T) {
	reply := `ITEM: Oatmeal
description: Steel-cut oats with honey
LOCATION: Starbucks
price: $3.25
CALORIES: 290 cal`

	parsed, err := Parse(reply)
	assert.NoError(t, err)
	assert.Equal(t, "Oatmeal", parsed.Item)
	assert.Equal(t, "Steel-cut oats with honey", parsed.Description)
}

func TestParse_DuplicateLabelsFirstWins(t *testing.T) {
	reply := wellFormedReply + "\nItem: Second Item"

	parsed, err := Parse(reply)
	assert.NoError(t, err)
	assert.Equal(t, "Greek Yogurt Parfait", parsed.Item)
}

func TestParse_EmptyReply(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptyReply)

	_, err = Parse("   \n\n  ")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestParse_IncompleteReply(t *testing.T) {
	_, err := Parse("Item: Bagel\nPrice: $2.00\n\nCalories: 280 cal")
	assert.ErrorIs(t, err, ErrIncompleteReply)
}

func TestParse_MissingField(t *testing.T) {
	reply := `Item: Bagel
Description: Plain bagel with cream cheese
Location: Dunkin' Donuts
Price: $2.49
Note: no calorie estimate given`

	parsed, err := Parse(reply)
	var missing *MissingFieldError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"calories"}, missing.Fields)
	// Remaining fields are still extracted so the caller can decide
	// whether the miss is fatal.
	assert.Equal(t, "Bagel", parsed.Item)
	assert.Equal(t, "$2.49", parsed.Price)
}

func TestParse_NutritionBlock(t *testing.T) {
	reply := wellFormedReply + `
DetailedNutrition:
  Protein: 10
  Carbs: 30
  Fat: 5
  Fiber: 5
  Sugar: 10`

	parsed, err := Parse(reply)
	assert.NoError(t, err)
	assert.True(t, parsed.HasNutrition)
	assert.Equal(t, DetailedNutritionInfo{Protein: 10, Carbs: 30, Fat: 5, Fiber: 5, Sugar: 10}, parsed.Nutrition)
}

func TestParse_NutritionWithUnits(t *testing.T) {
	reply := wellFormedReply + `
Protein: 12g
Carbs: 45.5 grams
Fat: 8g`

	parsed, err := Parse(reply)
	assert.NoError(t, err)
	assert.True(t, parsed.HasNutrition)
	assert.Equal(t, 12.0, parsed.Nutrition.Protein)
	assert.Equal(t, 45.5, parsed.Nutrition.Carbs)
	assert.Equal(t, 8.0, parsed.Nutrition.Fat)
	assert.Equal(t, 0.0, parsed.Nutrition.Fiber)
}

func TestParse_NonNumericNutritionDegradesToZero(t *testing.T) {
	reply := wellFormedReply + "\nProtein: unknown"

	parsed, err := Parse(reply)
	assert.NoError(t, err)
	assert.True(t, parsed.HasNutrition)
	assert.Equal(t, 0.0, parsed.Nutrition.Protein)
}

func TestParse_Idempotent(t *testing.T) {
	first, firstErr := Parse(wellFormedReply)
	second, secondErr := Parse(wellFormedReply)
	assert.Equal(t, firstErr, secondErr)
	assert.Equal(t, first, second)
}
