package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cooksmart/internal/pantry"
)

func TestBuildPromptListsPantryAndCounts(t *testing.T) {
	prompt := BuildPrompt([]pantry.Ingredient{
		{Name: "chicken", Count: 2},
		{Name: "rice", Count: 1},
	}, 3, Preferences{})

	assert.Contains(t, prompt, "Generate 3 recipes")
	assert.Contains(t, prompt, "- chicken (x2)")
	assert.Contains(t, prompt, "- rice\n")
	assert.Contains(t, prompt, "confidence_score")
}

func TestBuildPromptIncludesPreferences(t *testing.T) {
	prompt := BuildPrompt([]pantry.Ingredient{{Name: "tofu", Count: 1}}, 2, Preferences{
		DietaryRestrictions: []string{"vegetarian", "gluten-free"},
		Cuisine:             "thai",
		MaxCookTimeMinutes:  25,
	})

	assert.Contains(t, prompt, "vegetarian and gluten-free")
	assert.Contains(t, prompt, "thai cuisine")
	assert.Contains(t, prompt, "at most 25 minutes")
}

func TestBuildPromptOmitsAbsentPreferences(t *testing.T) {
	prompt := BuildPrompt([]pantry.Ingredient{{Name: "tofu", Count: 1}}, 2, Preferences{})

	assert.NotContains(t, prompt, "cuisine")
	assert.NotContains(t, prompt, "must be")
}