package spoonacular

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"cooksmart/internal/recipe"
)

const defaultBaseURL = "https://api.spoonacular.com"

// Client queries Spoonacular's findByIngredients endpoint.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// NewClient builds a Spoonacular client. baseURL is overridable for tests.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    resty.New(),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Name implements discovery.Source.
func (c *Client) Name() string {
	return "spoonacular"
}

type apiRecipe struct {
	ID                int             `json:"id"`
	Title             string          `json:"title"`
	UsedIngredients   []apiIngredient `json:"usedIngredients"`
	MissedIngredients []apiIngredient `json:"missedIngredients"`
}

type apiIngredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Search posts the pantry-derived tokens as a comma-separated ingredient
// list. Spoonacular returns ingredient usage but no instructions; the
// instructions field carries a pointer to the source rather than being
// left empty.
func (c *Client) Search(ctx context.Context, queries []string, maxResults int) ([]recipe.Recipe, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("spoonacular api key not configured")
	}

	var found []apiRecipe
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ingredients": strings.Join(queries, ","),
			"number":      strconv.Itoa(maxResults),
			"ranking":     "1",
			"apiKey":      c.apiKey,
		}).
		SetResult(&found).
		Get(c.baseURL + "/recipes/findByIngredients")
	if err != nil {
		return nil, fmt.Errorf("spoonacular request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("spoonacular returned status %d", resp.StatusCode())
	}

	recipes := make([]recipe.Recipe, 0, len(found))
	for _, item := range found {
		r := recipe.Recipe{
			ID:       "spoonacular-" + strconv.Itoa(item.ID),
			Title:    item.Title,
			Servings: 4,
			Instructions: []string{
				fmt.Sprintf("See full instructions at https://spoonacular.com/recipes/%d", item.ID),
			},
			Tags:   []string{"online"},
			Source: "spoonacular",
		}
		for _, ing := range append(item.UsedIngredients, item.MissedIngredients...) {
			r.Ingredients = append(r.Ingredients, recipe.IngredientItem{
				Name:   ing.Name,
				Amount: ing.Amount,
				Unit:   ing.Unit,
			})
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}
