package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecipesCleanArray(t *testing.T) {
	raw := `[{"title":"Pasta","calories":400,"cook_time_minutes":25,"servings":2,
		"ingredients":[{"name":"pasta","amount":200,"unit":"g"}],
		"instructions":["Boil pasta"],"tags":["dinner"],"confidence_score":90}]`

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Equal(t, "Pasta", r.Title)
	assert.Equal(t, 400.0, r.Calories)
	assert.Equal(t, 25, r.CookTimeMinutes)
	assert.Equal(t, 2, r.Servings)
	assert.Equal(t, []string{"Boil pasta"}, r.Instructions)
	assert.Equal(t, []string{"dinner"}, r.Tags)
	require.NotNil(t, r.ConfidenceScore)
	assert.Equal(t, 90, *r.ConfidenceScore)
	assert.True(t, strings.HasPrefix(r.ID, "ai-"))
}

func TestParseRecipesStripsMarkdownFences(t *testing.T) {
	raw := "```json\n[{\"title\":\"Fenced\"}]\n```"

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 1)
	assert.Equal(t, "Fenced", recipes[0].Title)
}

func TestParseRecipesRepairsTruncatedArray(t *testing.T) {
	// Missing one '}' and the closing ']', typical truncated model output.
	raw := `[{"title":"A"},{"title":"B"`

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 2)
	assert.Equal(t, "A", recipes[0].Title)
	assert.Equal(t, "B", recipes[1].Title)
}

func TestParseRecipesExtractsArrayFromProse(t *testing.T) {
	raw := `Here are your recipes! [{"title":"Wrapped"}] Enjoy!`

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 1)
	assert.Equal(t, "Wrapped", recipes[0].Title)
}

func TestParseRecipesStitchesBareObjects(t *testing.T) {
	raw := `First: {"title":"A","tags":["x"]} and second: {"title":"B"}`

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 2)
	assert.Equal(t, "A", recipes[0].Title)
	assert.Equal(t, "B", recipes[1].Title)
}

func TestParseRecipesTotalFailure(t *testing.T) {
	recipes := ParseRecipes("not json at all", 3)

	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Contains(t, r.Tags, "parsing-error")
	assert.Contains(t, r.Tags, "ai-generated")
	require.NotEmpty(t, r.Instructions)
	assert.Contains(t, strings.Join(r.Instructions, " "), "not json at all")
	require.NotNil(t, r.ConfidenceScore)
	assert.Equal(t, 50, *r.ConfidenceScore)
}

func TestParseRecipesDiagnosticTruncatesRawCopy(t *testing.T) {
	raw := strings.Repeat("x", 2000)

	recipes := ParseRecipes(raw, 1)

	require.Len(t, recipes, 1)
	for _, step := range recipes[0].Instructions {
		assert.LessOrEqual(t, len(step), 600)
	}
}

func TestParseRecipesTruncatesToExpectedCount(t *testing.T) {
	raw := `[{"title":"A"},{"title":"B"},{"title":"C"}]`

	recipes := ParseRecipes(raw, 2)

	require.Len(t, recipes, 2)
	assert.Equal(t, "A", recipes[0].Title)
	assert.Equal(t, "B", recipes[1].Title)
}

func TestParseRecipesNeverPads(t *testing.T) {
	raw := `[{"title":"Only One"}]`

	recipes := ParseRecipes(raw, 5)

	assert.Len(t, recipes, 1)
}

func TestParseRecipesFieldCoercion(t *testing.T) {
	raw := `[{"title":"Odd Types","calories":"250","protein":"abc",
		"cook_time_minutes":"forty","servings":"3",
		"ingredients":"not-an-array","instructions":42,"id":"model-id"}]`

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 1)
	r := recipes[0]
	assert.Equal(t, 250.0, r.Calories)
	assert.Equal(t, 0.0, r.Protein)
	assert.Equal(t, defaultCookTimeMinutes, r.CookTimeMinutes)
	assert.Equal(t, 3, r.Servings)
	assert.Empty(t, r.Ingredients)
	assert.Equal(t, []string{"No instructions provided"}, r.Instructions)
	assert.Equal(t, []string{"ai-generated"}, r.Tags)
	// Model-provided IDs are never trusted.
	assert.NotEqual(t, "model-id", r.ID)
	assert.True(t, strings.HasPrefix(r.ID, "ai-"))
}

func TestParseRecipesIngredientShapes(t *testing.T) {
	raw := `[{"title":"Mixed","ingredients":["flour",{"name":"milk","amount":1,"unit":"cup"},{"amount":2}]}]`

	recipes := ParseRecipes(raw, 5)

	require.Len(t, recipes, 1)
	ings := recipes[0].Ingredients
	require.Len(t, ings, 2)
	assert.Equal(t, "flour", ings[0].Name)
	assert.Equal(t, "milk", ings[1].Name)
	assert.Equal(t, 1.0, ings[1].Amount)
	assert.Equal(t, "cup", ings[1].Unit)
}

func TestRepairTruncatedArrayLeavesBalancedTextAlone(t *testing.T) {
	balanced := `[{"title":"A"}]`
	assert.Equal(t, balanced, repairTruncatedArray(balanced))
}

func TestExtractBalancedObjectsIgnoresBracesInStrings(t *testing.T) {
	objects := extractBalancedObjects(`{"title":"curly {brace} soup"} {"title":"B"}`)
	assert.Len(t, objects, 2)
}
