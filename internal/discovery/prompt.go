package discovery

import (
	"fmt"
	"strings"

	"cooksmart/internal/pantry"
)

// Preferences narrows what the model is asked to generate.
type Preferences struct {
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Cuisine             string   `json:"cuisine"`
	MaxCookTimeMinutes  int      `json:"max_cook_time_minutes"`
}

// BuildPrompt constructs the generation prompt from the pantry snapshot
// and preferences. The response contract mirrors what ParseRecipes
// expects; the model is told to skip markdown fencing even though the
// parser strips it anyway.
func BuildPrompt(ingredients []pantry.Ingredient, count int, prefs Preferences) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Generate %d recipes using only ingredients from this pantry:\n", count)
	for _, ing := range ingredients {
		fmt.Fprintf(&sb, "- %s", ing.Name)
		if ing.Count > 1 {
			fmt.Fprintf(&sb, " (x%d)", ing.Count)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Basic staples (salt, pepper, oil, water) may be assumed.\n")

	if len(prefs.DietaryRestrictions) > 0 {
		fmt.Fprintf(&sb, "Every recipe must be %s.\n", strings.Join(prefs.DietaryRestrictions, " and "))
	}
	if prefs.Cuisine != "" {
		fmt.Fprintf(&sb, "Prefer %s cuisine.\n", prefs.Cuisine)
	}
	if prefs.MaxCookTimeMinutes > 0 {
		fmt.Fprintf(&sb, "Each recipe must take at most %d minutes to cook.\n", prefs.MaxCookTimeMinutes)
	}

	sb.WriteString("Respond with a single clean JSON array and no markdown formatting. ")
	sb.WriteString("Each element must have these keys: 'title' (string), 'calories' (number), ")
	sb.WriteString("'protein' (number), 'carbs' (number), 'fat' (number), 'cook_time_minutes' (number), ")
	sb.WriteString("'servings' (number), 'ingredients' (array of objects with 'name', 'amount', 'unit'), ")
	sb.WriteString("'instructions' (array of strings), 'tags' (array of strings), ")
	sb.WriteString("'confidence_score' (number 0-100 for how well the recipe fits the pantry).")

	return sb.String()
}
