package mealdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"cooksmart/internal/recipe"
)

const defaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

// Client queries TheMealDB. The free tier filters by a single ingredient
// and needs a second lookup call for full recipe details.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient builds a MealDB client. baseURL is overridable for tests.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    resty.New(),
		baseURL: baseURL,
	}
}

// Name implements discovery.Source.
func (c *Client) Name() string {
	return "themealdb"
}

type filterResponse struct {
	Meals []struct {
		ID string `json:"idMeal"`
	} `json:"meals"`
}

type lookupResponse struct {
	Meals []map[string]any `json:"meals"`
}

// Search filters by each query token, then looks up full details for the
// collected meal IDs up to maxResults.
func (c *Client) Search(ctx context.Context, queries []string, maxResults int) ([]recipe.Recipe, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, q := range queries {
		var filtered filterResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("i", q).
			SetResult(&filtered).
			Get(c.baseURL + "/filter.php")
		if err != nil {
			return nil, fmt.Errorf("mealdb filter request failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("mealdb filter returned status %d", resp.StatusCode())
		}
		for _, meal := range filtered.Meals {
			if !seen[meal.ID] {
				seen[meal.ID] = true
				ids = append(ids, meal.ID)
			}
		}
	}

	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	recipes := make([]recipe.Recipe, 0, len(ids))
	for _, id := range ids {
		var looked lookupResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("i", id).
			SetResult(&looked).
			Get(c.baseURL + "/lookup.php")
		if err != nil {
			return nil, fmt.Errorf("mealdb lookup request failed: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("mealdb lookup returned status %d", resp.StatusCode())
		}
		if len(looked.Meals) == 0 {
			continue
		}
		recipes = append(recipes, mealToRecipe(looked.Meals[0]))
	}
	return recipes, nil
}

// mealToRecipe flattens TheMealDB's strIngredient1..20 / strMeasure1..20
// scheme into an ingredient list.
func mealToRecipe(meal map[string]any) recipe.Recipe {
	r := recipe.Recipe{
		ID:       "mealdb-" + stringField(meal, "idMeal"),
		Title:    stringField(meal, "strMeal"),
		Servings: 4,
		Source:   "themealdb",
	}

	for i := 1; i <= 20; i++ {
		name := strings.TrimSpace(stringField(meal, "strIngredient"+strconv.Itoa(i)))
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, recipe.IngredientItem{
			Name: name,
			Unit: strings.TrimSpace(stringField(meal, "strMeasure"+strconv.Itoa(i))),
		})
	}

	instructions := strings.TrimSpace(stringField(meal, "strInstructions"))
	for _, line := range strings.Split(instructions, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			r.Instructions = append(r.Instructions, line)
		}
	}
	if len(r.Instructions) == 0 {
		r.Instructions = []string{"No instructions provided"}
	}

	for _, key := range []string{"strCategory", "strArea"} {
		if v := strings.TrimSpace(stringField(meal, key)); v != "" {
			r.Tags = append(r.Tags, strings.ToLower(v))
		}
	}
	return r
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
