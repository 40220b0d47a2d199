package discovery

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"cooksmart/internal/pantry"
	"cooksmart/internal/recipe"
)

// DefaultMaxResults bounds online searches when the caller does not.
const DefaultMaxResults = 20

// Source is one configured external recipe provider. Each source's
// failure is isolated: it contributes zero recipes and the others proceed.
type Source interface {
	Name() string
	Search(ctx context.Context, queries []string, maxResults int) ([]recipe.Recipe, error)
}

// ModelProvider is the generative model behind the AI path.
type ModelProvider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Service composes normalization, scoring, deduplication, parsing and the
// cache into the three discovery modes. One instance is built by main and
// shared; all mutable state lives on the struct.
type Service struct {
	repo     recipe.Store
	sources  []Source
	provider ModelProvider
	cache    *CacheManager
	logger   *zap.Logger

	strictThreshold float64
	aiRecipeCount   int

	// busy guards web and AI generations together. An overlapping call is
	// rejected immediately, never queued.
	busy atomic.Bool
}

// NewService builds the discovery service. strictThreshold <= 0 falls back
// to recipe.StrictCoverageThreshold; aiRecipeCount <= 0 falls back to 5.
func NewService(repo recipe.Store, sources []Source, provider ModelProvider, cache *CacheManager, strictThreshold float64, aiRecipeCount int, logger *zap.Logger) *Service {
	if aiRecipeCount <= 0 {
		aiRecipeCount = 5
	}
	return &Service{
		repo:            repo,
		sources:         sources,
		provider:        provider,
		cache:           cache,
		logger:          logger,
		strictThreshold: strictThreshold,
		aiRecipeCount:   aiRecipeCount,
	}
}

// Cache exposes the cache manager for collaborators (pantry mutations,
// admin endpoints).
func (s *Service) Cache() *CacheManager {
	return s.cache
}

func (s *Service) filterOptions(strict bool) recipe.FilterOptions {
	mode := recipe.MatchPartial
	if strict {
		mode = recipe.MatchStrict
	}
	return recipe.FilterOptions{Mode: mode, StrictThreshold: s.strictThreshold}
}

// SearchStoredRecipesOnly matches the stored corpus against the pantry.
// An empty pantry short-circuits to the unfiltered corpus listing.
func (s *Service) SearchStoredRecipesOnly(ctx context.Context, pantryNames []string, strict bool) ([]recipe.Recipe, error) {
	pantryNames = cleanNames(pantryNames)
	if len(pantryNames) == 0 {
		return s.repo.GetAllRecipes(ctx)
	}

	candidates, err := s.repo.FindByIngredientSubstring(ctx, pantryNames)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates, err = s.repo.GetAllRecipes(ctx)
		if err != nil {
			return nil, err
		}
	}

	opts := s.filterOptions(strict)
	results := make([]recipe.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if !recipe.PassesFilter(&r, pantryNames, opts) {
			continue
		}
		score := recipe.Score(r.IngredientNames(), pantryNames)
		r.MatchScore = &score
		r.MarkPantryMatches(pantryNames)
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].MatchScore > *results[j].MatchScore
	})
	return results, nil
}

// SearchOnlineRecipes queries every configured source, deduplicates across
// them in source-priority order, truncates, persists and returns. Source
// failures are logged and isolated; partial results remain usable.
func (s *Service) SearchOnlineRecipes(ctx context.Context, pantryNames []string, strict bool, maxResults int) ([]recipe.Recipe, error) {
	pantryNames = cleanNames(pantryNames)
	if len(pantryNames) == 0 {
		return nil, ErrNoIngredients
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer s.busy.Store(false)

	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	queries := searchQueries(pantryNames)

	var combined []recipe.Recipe
	for _, source := range s.sources {
		found, err := source.Search(ctx, queries, maxResults)
		if err != nil {
			srcErr := &SourceError{Source: source.Name(), Err: err}
			s.logger.Warn("recipe source failed", zap.String("source", source.Name()), zap.Error(srcErr))
			continue
		}
		s.logger.Debug("recipe source responded",
			zap.String("source", source.Name()),
			zap.Int("recipes", len(found)),
		)
		combined = append(combined, found...)
	}

	// Dedup must precede truncation so maxResults applies to unique
	// recipes.
	combined = recipe.Dedupe(combined)

	opts := s.filterOptions(strict)
	results := make([]recipe.Recipe, 0, len(combined))
	for _, r := range combined {
		if !recipe.PassesFilter(&r, pantryNames, opts) {
			continue
		}
		score := recipe.Score(r.IngredientNames(), pantryNames)
		r.MatchScore = &score
		r.MarkPantryMatches(pantryNames)
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].MatchScore > *results[j].MatchScore
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	if len(results) > 0 {
		if err := s.repo.UpsertRecipes(ctx, results); err != nil {
			s.logger.Warn("failed to persist online recipes", zap.Error(err))
		}
	}
	return results, nil
}

// GenerateAIRecipesFromPantry returns cached recipes when they are still
// fresh, otherwise generates a new set. Model and parse failures are
// converted into a single diagnostic recipe; the only errors returned are
// the empty-pantry precondition and the concurrency guard.
func (s *Service) GenerateAIRecipesFromPantry(ctx context.Context, ingredients []pantry.Ingredient, count int, prefs Preferences) ([]recipe.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	if count <= 0 {
		count = s.aiRecipeCount
	}

	if !s.cache.ShouldRegenerate() && s.cache.HasRecipes() {
		s.logger.Info("returning cached AI recipes", zap.Int("recipes", len(s.cache.Recipes())))
		return s.cache.Recipes(), nil
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer s.busy.Store(false)

	prompt := BuildPrompt(ingredients, count, prefs)
	raw, err := s.provider.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Error("model call failed", zap.Error(err))
		return []recipe.Recipe{generationFailureRecipe(err)}, nil
	}

	recipes := ParseRecipes(raw, count)
	if isParseDiagnostic(recipes) {
		// Do not cache or freshen a parse-failure placeholder; the next
		// call should regenerate.
		s.logger.Warn("model response unparseable", zap.Int("raw_len", len(raw)))
		return recipes, nil
	}

	if err := s.cache.SaveRecipes(ctx, recipes); err != nil {
		s.logger.Warn("failed to persist generated recipes", zap.Error(err))
		return recipes, nil
	}
	if err := s.cache.ResetFlag(ctx); err != nil {
		s.logger.Warn("failed to reset cache flag", zap.Error(err))
	}
	return recipes, nil
}

// isParseDiagnostic reports whether the parser fell back to its
// total-failure placeholder.
func isParseDiagnostic(recipes []recipe.Recipe) bool {
	if len(recipes) != 1 {
		return false
	}
	for _, tag := range recipes[0].Tags {
		if tag == "parsing-error" {
			return true
		}
	}
	return false
}

// generationFailureRecipe is the AI-path rendition of a network error: a
// single explanatory placeholder so the result type stays Recipe[] across
// failure modes.
func generationFailureRecipe(err error) recipe.Recipe {
	confidence := diagnosticConfidence
	return recipe.Recipe{
		ID:              newRecipeID(),
		Title:           "Recipe generation unavailable",
		CookTimeMinutes: defaultCookTimeMinutes,
		Servings:        defaultServings,
		Ingredients:     []recipe.IngredientItem{},
		Instructions: []string{
			"We could not reach the recipe service. Check your connection and try again.",
			"Error: " + err.Error(),
		},
		Tags:            []string{"ai-generated", "network-error"},
		ConfidenceScore: &confidence,
		Source:          "ai",
	}
}

// searchQueries turns pantry names into short tokens the external sources
// understand, deduplicated and order-preserving.
func searchQueries(pantryNames []string) []string {
	seen := make(map[string]bool)
	var queries []string
	for _, name := range pantryNames {
		for _, token := range recipe.ExtractSearchTokens(name) {
			if seen[token] {
				continue
			}
			seen[token] = true
			queries = append(queries, token)
		}
	}
	return queries
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
