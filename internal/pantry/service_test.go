package pantry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	items  map[int64]*Ingredient
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[int64]*Ingredient), nextID: 1}
}

func (s *fakeStore) GetAll(ctx context.Context) ([]Ingredient, error) {
	out := make([]Ingredient, 0, len(s.items))
	for _, ing := range s.items {
		out = append(out, *ing)
	}
	return out, nil
}

func (s *fakeStore) GetByName(ctx context.Context, name string) (*Ingredient, error) {
	for _, ing := range s.items {
		if ing.Name == name {
			copied := *ing
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Insert(ctx context.Context, ing *Ingredient) error {
	ing.ID = s.nextID
	s.nextID++
	copied := *ing
	s.items[ing.ID] = &copied
	return nil
}

func (s *fakeStore) Update(ctx context.Context, ing *Ingredient) error {
	if _, ok := s.items[ing.ID]; !ok {
		return errors.New("not found")
	}
	copied := *ing
	s.items[ing.ID] = &copied
	return nil
}

func (s *fakeStore) IncrementCount(ctx context.Context, id int64) error {
	ing, ok := s.items[id]
	if !ok {
		return errors.New("not found")
	}
	ing.Count++
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id int64) error {
	delete(s.items, id)
	return nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	return len(s.items), nil
}

type fakeInvalidator struct {
	invalidations int
	clears        int
}

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.invalidations++
	return nil
}

func (f *fakeInvalidator) Clear(ctx context.Context) error {
	f.clears++
	return nil
}

func TestAddNewIngredientInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	cache := &fakeInvalidator{}
	svc := NewService(store, cache, zap.NewNop())

	saved, err := svc.Add(context.Background(), &Ingredient{Name: "chicken"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, 1, saved.Count)
	assert.Equal(t, 1, cache.invalidations)
}

func TestAddExistingIngredientIncrementsCount(t *testing.T) {
	store := newFakeStore()
	cache := &fakeInvalidator{}
	svc := NewService(store, cache, zap.NewNop())

	first, err := svc.Add(context.Background(), &Ingredient{Name: "chicken"})
	require.NoError(t, err)

	second, err := svc.Add(context.Background(), &Ingredient{Name: "chicken"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Count)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddRequiresName(t *testing.T) {
	svc := NewService(newFakeStore(), &fakeInvalidator{}, zap.NewNop())

	_, err := svc.Add(context.Background(), &Ingredient{})
	assert.Error(t, err)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	cache := &fakeInvalidator{}
	svc := NewService(store, cache, zap.NewNop())

	saved, err := svc.Add(context.Background(), &Ingredient{Name: "chicken"})
	require.NoError(t, err)

	saved.Category = "meat"
	require.NoError(t, svc.Update(context.Background(), saved))
	assert.Equal(t, 2, cache.invalidations)
}

func TestRemoveInvalidatesWhileItemsRemain(t *testing.T) {
	store := newFakeStore()
	cache := &fakeInvalidator{}
	svc := NewService(store, cache, zap.NewNop())

	first, err := svc.Add(context.Background(), &Ingredient{Name: "chicken"})
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), &Ingredient{Name: "rice"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), first.ID))
	assert.Equal(t, 3, cache.invalidations)
	assert.Zero(t, cache.clears)
}

func TestRemoveLastIngredientClearsCache(t *testing.T) {
	store := newFakeStore()
	cache := &fakeInvalidator{}
	svc := NewService(store, cache, zap.NewNop())

	saved, err := svc.Add(context.Background(), &Ingredient{Name: "chicken"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), saved.ID))
	assert.Equal(t, 1, cache.clears)
	assert.Equal(t, 1, cache.invalidations)
}
