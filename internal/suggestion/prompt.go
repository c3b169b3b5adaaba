package suggestion

import (
	"fmt"
	"strings"
)

const baseSystemMessage = `You are a helpful assistant that suggests quick grab-and-go breakfast options. Provide diverse suggestions from various fast-food chains, convenience stores, and deli grocery stores. Avoid repeatedly suggesting the same store. Always respond in the following format:

Item: [Name of the breakfast item]
Description: [Brief description of the item]
Location: [Where to get it - be specific and varied]
Price: [Estimated price]
Calories: [Approximate calories]`

const nutritionInstruction = `
DetailedNutrition:
  Protein: [grams of protein]
  Carbs: [grams of carbohydrates]
  Fat: [grams of fat]
  Fiber: [grams of fiber]
  Sugar: [grams of sugar]`

// BuildPrompt composes the system and user messages for one suggestion
// request. It is a pure function of its input: absent preference lists
// render as empty lists so the instruction shape is stable.
func BuildPrompt(rc RequestContext) (systemMessage, userMessage string) {
	var sb strings.Builder
	sb.WriteString(baseSystemMessage)
	if rc.IncludeNutrition {
		sb.WriteString(nutritionInstruction)
	}
	sb.WriteString("\n\nEnsure all fields are filled out, even if you need to make an educated guess.")

	prefs := rc.Preferences
	prefs.Normalize()
	sb.WriteString("\n\nUser context:")
	sb.WriteString("\nDietary restrictions: " + joinOrNone(prefs.DietaryRestrictions))
	sb.WriteString("\nAllergies: " + joinOrNone(prefs.Allergies))
	sb.WriteString("\nFavorite ingredients: " + joinOrNone(prefs.FavoriteIngredients))
	sb.WriteString("\nDisliked ingredients: " + joinOrNone(prefs.DislikedIngredients))
	sb.WriteString("\nCalorie preference: " + prefs.CaloriePreference)
	sb.WriteString("\nMood: " + orNone(rc.Mood))
	sb.WriteString("\nWeather: " + orNone(rc.Weather))

	userMessage = fmt.Sprintf(`Based on the following input, suggest a quick grab-and-go breakfast option: %s

Choose from a variety of locations such as Starbucks, Dunkin' Donuts, McDonald's, Subway, local delis, 7-Eleven, Whole Foods, Panera Bread, or any other relevant fast-food chain, convenience store, or grocery store. Don't always choose the same location.`, rc.FreeText)

	return sb.String(), userMessage
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}
