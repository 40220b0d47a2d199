package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cooksmart/internal/discovery"
	"cooksmart/internal/pantry"
	"cooksmart/internal/recipe"
)

// DiscoveryService defines the discovery engine operations the handlers
// need.
type DiscoveryService interface {
	SearchStoredRecipesOnly(ctx context.Context, pantryNames []string, strict bool) ([]recipe.Recipe, error)
	SearchOnlineRecipes(ctx context.Context, pantryNames []string, strict bool, maxResults int) ([]recipe.Recipe, error)
	GenerateAIRecipesFromPantry(ctx context.Context, ingredients []pantry.Ingredient, count int, prefs discovery.Preferences) ([]recipe.Recipe, error)
}

// PantryService defines pantry operations.
type PantryService interface {
	List(ctx context.Context) ([]pantry.Ingredient, error)
	Add(ctx context.Context, ing *pantry.Ingredient) (*pantry.Ingredient, error)
	Update(ctx context.Context, ing *pantry.Ingredient) error
	Remove(ctx context.Context, id int64) error
}

// RecipeReader reads the stored corpus.
type RecipeReader interface {
	GetAllRecipes(ctx context.Context) ([]recipe.Recipe, error)
	GetByTag(ctx context.Context, tag string) ([]recipe.Recipe, error)
}

// ProductLookup resolves barcodes to product records.
type ProductLookup interface {
	LookupBarcode(ctx context.Context, barcode string) (*recipe.Product, error)
}

// RecipeCache is the slice of the cache exposed over HTTP.
type RecipeCache interface {
	Clear(ctx context.Context) error
}

// Handler handles HTTP requests.
type Handler struct {
	Discovery DiscoveryService
	Pantry    PantryService
	Recipes   RecipeReader
	Products  ProductLookup
	Cache     RecipeCache
	Logger    *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(d DiscoveryService, p PantryService, r RecipeReader, products ProductLookup, cache RecipeCache, logger *zap.Logger) *Handler {
	return &Handler{Discovery: d, Pantry: p, Recipes: r, Products: products, Cache: cache, Logger: logger}
}

// Register wires all routes onto the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/pantry", h.ListPantry)
	r.POST("/pantry", h.AddPantryIngredient)
	r.PUT("/pantry/:id", h.UpdatePantryIngredient)
	r.DELETE("/pantry/:id", h.DeletePantryIngredient)
	r.GET("/pantry/lookup/:barcode", h.LookupProduct)

	r.GET("/recipes", h.ListRecipes)

	r.POST("/discover/stored", h.DiscoverStored)
	r.POST("/discover/online", h.DiscoverOnline)
	r.POST("/discover/ai", h.DiscoverAI)

	r.DELETE("/cache", h.ClearCache)
}

type discoverRequest struct {
	PantryIngredients []string `json:"pantry_ingredients"`
	Strict            bool     `json:"strict"`
	MaxResults        int      `json:"max_results"`
}

type aiDiscoverRequest struct {
	Count       int                   `json:"count"`
	Preferences discovery.Preferences `json:"preferences"`
}

// ListPantry returns all pantry ingredients.
func (h *Handler) ListPantry(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ingredients, err := h.Pantry.List(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// AddPantryIngredient inserts or increments a pantry ingredient.
func (h *Handler) AddPantryIngredient(c *gin.Context) {
	var ing pantry.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	saved, err := h.Pantry.Add(ctx, &ing)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// UpdatePantryIngredient overwrites a pantry ingredient.
func (h *Handler) UpdatePantryIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	var ing pantry.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ing.ID = id

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Pantry.Update(ctx, &ing); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

// DeletePantryIngredient removes a pantry ingredient.
func (h *Handler) DeletePantryIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Pantry.Remove(ctx, id); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LookupProduct resolves a barcode to a product record and its normalized
// display name.
func (h *Handler) LookupProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	product, err := h.Products.LookupBarcode(ctx, c.Param("barcode"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product":         product,
		"normalized_name": recipe.NormalizeProductName(*product),
	})
}

// ListRecipes returns the stored corpus, optionally filtered by tag.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var (
		recipes []recipe.Recipe
		err     error
	)
	if tag := c.Query("tag"); tag != "" {
		recipes, err = h.Recipes.GetByTag(ctx, tag)
	} else {
		recipes, err = h.Recipes.GetAllRecipes(ctx)
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.respondRecipes(c, recipes)
}

// DiscoverStored matches the stored corpus against the pantry. When the
// request omits ingredient names the current pantry is used.
func (h *Handler) DiscoverStored(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	names, err := h.resolveNames(ctx, req.PantryIngredients)
	if err != nil {
		h.serverError(c, err)
		return
	}

	recipes, err := h.Discovery.SearchStoredRecipesOnly(ctx, names, req.Strict)
	if err != nil {
		h.discoveryError(c, err)
		return
	}
	h.respondRecipes(c, recipes)
}

// DiscoverOnline searches the configured external sources.
func (h *Handler) DiscoverOnline(c *gin.Context) {
	var req discoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 45*time.Second)
	defer cancel()

	names, err := h.resolveNames(ctx, req.PantryIngredients)
	if err != nil {
		h.serverError(c, err)
		return
	}

	recipes, err := h.Discovery.SearchOnlineRecipes(ctx, names, req.Strict, req.MaxResults)
	if err != nil {
		h.discoveryError(c, err)
		return
	}
	h.respondRecipes(c, recipes)
}

// DiscoverAI returns cached or freshly generated recipes for the current
// pantry.
func (h *Handler) DiscoverAI(c *gin.Context) {
	var req aiDiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	ingredients, err := h.Pantry.List(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}

	recipes, err := h.Discovery.GenerateAIRecipesFromPantry(ctx, ingredients, req.Count, req.Preferences)
	if err != nil {
		h.discoveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// ClearCache empties the AI recipe cache.
func (h *Handler) ClearCache(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cache.Clear(ctx); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// resolveNames falls back to the stored pantry when the request carries no
// ingredient names.
func (h *Handler) resolveNames(ctx context.Context, names []string) ([]string, error) {
	if len(names) > 0 {
		return names, nil
	}
	ingredients, err := h.Pantry.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, ing.Name)
	}
	return out, nil
}

// respondRecipes keeps empty search results explained rather than bare.
func (h *Handler) respondRecipes(c *gin.Context, recipes []recipe.Recipe) {
	if len(recipes) == 0 {
		c.JSON(http.StatusOK, gin.H{"recipes": []recipe.Recipe{}, "message": "no matches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) discoveryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, discovery.ErrNoIngredients):
		c.JSON(http.StatusBadRequest, gin.H{"error": "add some pantry ingredients first"})
	case errors.Is(err, discovery.ErrGenerationInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "a generation is already running"})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
