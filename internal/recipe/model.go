package recipe

// IngredientItem is a single line of a recipe's ingredient list.
// InPantry is derived at search time and never persisted as authoritative.
type IngredientItem struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	InPantry bool    `json:"in_pantry,omitempty"`
}

// Recipe represents a recipe surfaced to the user, whether it came from the
// stored corpus, an online source, or the generative model.
type Recipe struct {
	ID              string           `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	Calories        float64          `json:"calories" db:"calories"`
	Protein         float64          `json:"protein" db:"protein"`
	Carbs           float64          `json:"carbs" db:"carbs"`
	Fat             float64          `json:"fat" db:"fat"`
	CookTimeMinutes int              `json:"cook_time_minutes" db:"cook_time_minutes"`
	Servings        int              `json:"servings" db:"servings"`
	Ingredients     []IngredientItem `json:"ingredients"`
	Instructions    []string         `json:"instructions"`
	Tags            []string         `json:"tags"`
	MatchScore      *int             `json:"match_score,omitempty"`
	ConfidenceScore *int             `json:"confidence_score,omitempty"`
	Source          string           `json:"source,omitempty" db:"source"`
}

// IngredientNames returns the recipe's ingredient names in order.
func (r *Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// MarkPantryMatches sets InPantry on each ingredient line using the same
// bidirectional containment rule the scorer uses.
func (r *Recipe) MarkPantryMatches(pantryNames []string) {
	for i := range r.Ingredients {
		r.Ingredients[i].InPantry = ingredientMatched(r.Ingredients[i].Name, pantryNames)
	}
}
