package pantry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CacheInvalidator is the slice of the AI cache the pantry needs: every
// pantry mutation marks generated recipes stale, and emptying the pantry
// clears them outright. Invalidation is a flag write, never a
// regeneration, so mutations stay fast.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
	Clear(ctx context.Context) error
}

// Service owns pantry mutations and keeps the AI cache's invalidation flag
// in sync with them.
type Service struct {
	store  Store
	cache  CacheInvalidator
	logger *zap.Logger
}

// NewService creates a pantry service.
func NewService(store Store, cache CacheInvalidator, logger *zap.Logger) *Service {
	return &Service{store: store, cache: cache, logger: logger}
}

// List returns all pantry ingredients.
func (s *Service) List(ctx context.Context) ([]Ingredient, error) {
	return s.store.GetAll(ctx)
}

// Add inserts a new ingredient, or increments the count when one with the
// same name already exists.
func (s *Service) Add(ctx context.Context, ing *Ingredient) (*Ingredient, error) {
	if ing.Name == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}
	if ing.Count < 1 {
		ing.Count = 1
	}

	existing, err := s.store.GetByName(ctx, ing.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.store.IncrementCount(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.Count++
		s.invalidate(ctx)
		return existing, nil
	}

	if err := s.store.Insert(ctx, ing); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return ing, nil
}

// Update overwrites an ingredient.
func (s *Service) Update(ctx context.Context, ing *Ingredient) error {
	if ing.Count < 1 {
		ing.Count = 1
	}
	if err := s.store.Update(ctx, ing); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Remove deletes an ingredient. When the pantry becomes empty the AI cache
// is cleared rather than just invalidated.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	remaining, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count pantry after delete", zap.Error(err))
		s.invalidate(ctx)
		return nil
	}
	if remaining == 0 {
		if err := s.cache.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear recipe cache", zap.Error(err))
		}
		return nil
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("failed to invalidate recipe cache", zap.Error(err))
	}
}
