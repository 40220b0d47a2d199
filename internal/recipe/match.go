package recipe

import (
	"math"
	"strings"
)

// MatchMode selects the inclusion policy for recipe filtering.
type MatchMode string

const (
	// MatchStrict includes a recipe only when the pantry covers at least
	// StrictCoverageThreshold of its ingredients.
	MatchStrict MatchMode = "strict"
	// MatchPartial includes a recipe with any nonzero pantry overlap.
	MatchPartial MatchMode = "partial"
)

// StrictCoverageThreshold is the fraction of a recipe's ingredients the
// pantry must cover in strict mode. The value has no validated product
// rationale; override it through FilterOptions rather than editing here.
const StrictCoverageThreshold = 0.8

// FilterOptions tunes PassesFilter. The zero value means strict-mode
// filtering at StrictCoverageThreshold.
type FilterOptions struct {
	Mode            MatchMode
	StrictThreshold float64
}

func (o FilterOptions) threshold() float64 {
	if o.StrictThreshold > 0 {
		return o.StrictThreshold
	}
	return StrictCoverageThreshold
}

// ingredientMatched applies bidirectional substring containment: "chicken"
// matches pantry "chicken breast" and vice versa. Both sides are
// lower-cased first.
func ingredientMatched(ingredientName string, pantryNames []string) bool {
	ing := strings.ToLower(strings.TrimSpace(ingredientName))
	if ing == "" {
		return false
	}
	for _, pantryName := range pantryNames {
		p := strings.ToLower(strings.TrimSpace(pantryName))
		if p == "" {
			continue
		}
		if strings.Contains(p, ing) || strings.Contains(ing, p) {
			return true
		}
	}
	return false
}

// countMatches returns how many of the recipe's ingredient names are
// satisfied by the pantry.
func countMatches(recipeIngredients, pantryNames []string) int {
	matched := 0
	for _, name := range recipeIngredients {
		if ingredientMatched(name, pantryNames) {
			matched++
		}
	}
	return matched
}

// Score computes a 0-100 match score: the rounded percentage of recipe
// ingredients satisfied by the pantry. A recipe with no ingredients scores
// 0, never NaN.
func Score(recipeIngredients, pantryNames []string) int {
	total := len(recipeIngredients)
	if total == 0 {
		return 0
	}
	matched := countMatches(recipeIngredients, pantryNames)
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// PassesFilter applies the inclusion policy. Strict mode requires matched
// ingredients >= floor(total * threshold); partial mode requires any
// nonzero overlap.
func PassesFilter(r *Recipe, pantryNames []string, opts FilterOptions) bool {
	total := len(r.Ingredients)
	if total == 0 {
		return false
	}
	matched := countMatches(r.IngredientNames(), pantryNames)

	if opts.Mode == MatchPartial {
		return matched > 0
	}
	required := int(math.Floor(float64(total) * opts.threshold()))
	return matched >= required
}
