package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"cooksmart/internal/recipe"
)

// Fixed storage keys for the persisted cache state.
const (
	cacheRecipesKey = "cooksmart:ai:recipes"
	cacheFlagKey    = "cooksmart:ai:should_regenerate"
)

// CacheStore persists the generated-recipe set and the invalidation flag
// across process restarts.
type CacheStore interface {
	LoadRecipes(ctx context.Context) ([]recipe.Recipe, error)
	SaveRecipes(ctx context.Context, recipes []recipe.Recipe) error
	LoadFlag(ctx context.Context) (bool, error)
	SaveFlag(ctx context.Context, stale bool) error
	DeleteAll(ctx context.Context) error
}

// CacheManager holds the generated-recipe set plus its invalidation flag.
// State is loaded from the store once at startup and kept in memory; every
// mutation is written through. Freshness is decided solely by the flag,
// never by elapsed time.
//
// The flag follows a two-step protocol: pantry mutations set it, and only
// an explicit ResetFlag after a recognized-successful generation clears
// it. SaveRecipes deliberately does not clear the flag, so a save racing a
// stale in-flight request cannot silently mark the cache fresh.
type CacheManager struct {
	store  CacheStore
	logger *zap.Logger

	mu               sync.RWMutex
	recipes          []recipe.Recipe
	shouldRegenerate bool
}

// NewCacheManager builds the manager and loads persisted state.
func NewCacheManager(ctx context.Context, store CacheStore, logger *zap.Logger) (*CacheManager, error) {
	recipes, err := store.LoadRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached recipes: %w", err)
	}
	stale, err := store.LoadFlag(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cache flag: %w", err)
	}

	logger.Info("recipe cache loaded",
		zap.Int("recipes", len(recipes)),
		zap.Bool("should_regenerate", stale),
	)
	return &CacheManager{
		store:            store,
		logger:           logger,
		recipes:          recipes,
		shouldRegenerate: stale,
	}, nil
}

// Invalidate idempotently marks the cached set stale and persists the
// flag. Callable from pantry mutations without awaiting a regeneration.
func (m *CacheManager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.shouldRegenerate = true
	m.mu.Unlock()

	if err := m.store.SaveFlag(ctx, true); err != nil {
		return fmt.Errorf("failed to persist cache invalidation: %w", err)
	}
	return nil
}

// ShouldRegenerate reads the in-memory invalidation flag.
func (m *CacheManager) ShouldRegenerate() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shouldRegenerate
}

// Recipes returns the cached generated set.
func (m *CacheManager) Recipes() []recipe.Recipe {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]recipe.Recipe, len(m.recipes))
	copy(out, m.recipes)
	return out
}

// HasRecipes reports whether a cached set exists.
func (m *CacheManager) HasRecipes() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.recipes) > 0
}

// SaveRecipes replaces the cached set and persists it. It does not touch
// the invalidation flag; call ResetFlag once the generation is known good.
func (m *CacheManager) SaveRecipes(ctx context.Context, recipes []recipe.Recipe) error {
	m.mu.Lock()
	m.recipes = make([]recipe.Recipe, len(recipes))
	copy(m.recipes, recipes)
	m.mu.Unlock()

	if err := m.store.SaveRecipes(ctx, recipes); err != nil {
		return fmt.Errorf("failed to persist cached recipes: %w", err)
	}
	return nil
}

// ResetFlag clears the invalidation flag after a successful regeneration.
func (m *CacheManager) ResetFlag(ctx context.Context) error {
	m.mu.Lock()
	m.shouldRegenerate = false
	m.mu.Unlock()

	if err := m.store.SaveFlag(ctx, false); err != nil {
		return fmt.Errorf("failed to persist cache flag reset: %w", err)
	}
	return nil
}

// Clear empties the cached set, clears the flag and removes the persisted
// keys. Used when the pantry becomes empty.
func (m *CacheManager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.recipes = nil
	m.shouldRegenerate = false
	m.mu.Unlock()

	if err := m.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear persisted cache: %w", err)
	}
	return nil
}

// RedisCacheStore persists cache state in Redis under fixed keys: a
// recipe-list blob and a boolean flag. No TTLs are set.
type RedisCacheStore struct {
	client *redis.Client
}

// NewRedisCacheStore wraps a Redis client.
func NewRedisCacheStore(client *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{client: client}
}

// LoadRecipes reads the persisted recipe blob; a missing key yields nil.
func (s *RedisCacheStore) LoadRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	data, err := s.client.Get(ctx, cacheRecipesKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe blob: %w", err)
	}
	var recipes []recipe.Recipe
	if err := json.Unmarshal([]byte(data), &recipes); err != nil {
		return nil, fmt.Errorf("failed to decode recipe blob: %w", err)
	}
	return recipes, nil
}

// SaveRecipes writes the recipe blob.
func (s *RedisCacheStore) SaveRecipes(ctx context.Context, recipes []recipe.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("failed to encode recipe blob: %w", err)
	}
	if err := s.client.Set(ctx, cacheRecipesKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write recipe blob: %w", err)
	}
	return nil
}

// LoadFlag reads the persisted flag; a missing key yields false.
func (s *RedisCacheStore) LoadFlag(ctx context.Context) (bool, error) {
	data, err := s.client.Get(ctx, cacheFlagKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache flag: %w", err)
	}
	return data == "true", nil
}

// SaveFlag writes the flag.
func (s *RedisCacheStore) SaveFlag(ctx context.Context, stale bool) error {
	value := "false"
	if stale {
		value = "true"
	}
	if err := s.client.Set(ctx, cacheFlagKey, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cache flag: %w", err)
	}
	return nil
}

// DeleteAll removes both persisted keys.
func (s *RedisCacheStore) DeleteAll(ctx context.Context) error {
	if err := s.client.Del(ctx, cacheRecipesKey, cacheFlagKey).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}
