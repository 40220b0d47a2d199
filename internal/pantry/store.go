package pantry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Ingredient is an item the user owns, with quantity and nutrition per
// serving.
type Ingredient struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Category    string  `json:"category" db:"category"`
	Calories    float64 `json:"calories" db:"calories"`
	Protein     float64 `json:"protein" db:"protein"`
	Carbs       float64 `json:"carbs" db:"carbs"`
	Fat         float64 `json:"fat" db:"fat"`
	ServingSize float64 `json:"serving_size" db:"serving_size"`
	ServingUnit string  `json:"serving_unit" db:"serving_unit"`
	Count       int     `json:"count" db:"count"`
}

// Store defines pantry persistence.
type Store interface {
	GetAll(ctx context.Context) ([]Ingredient, error)
	GetByName(ctx context.Context, name string) (*Ingredient, error)
	Insert(ctx context.Context, ing *Ingredient) error
	Update(ctx context.Context, ing *Ingredient) error
	IncrementCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates the pantry schema if missing.
func NewPostgresStore(db *sqlx.DB) (*PostgresStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS pantry_ingredients (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		category TEXT NOT NULL DEFAULT '',
		calories DOUBLE PRECISION NOT NULL DEFAULT 0,
		protein DOUBLE PRECISION NOT NULL DEFAULT 0,
		carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
		fat DOUBLE PRECISION NOT NULL DEFAULT 0,
		serving_size DOUBLE PRECISION NOT NULL DEFAULT 0,
		serving_unit TEXT NOT NULL DEFAULT '',
		count INTEGER NOT NULL DEFAULT 1 CHECK (count >= 1)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create pantry_ingredients table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// GetAll returns every pantry ingredient.
func (s *PostgresStore) GetAll(ctx context.Context) ([]Ingredient, error) {
	var out []Ingredient
	err := s.db.SelectContext(ctx, &out, "SELECT * FROM pantry_ingredients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get pantry ingredients: %w", err)
	}
	return out, nil
}

// GetByName returns the ingredient with the given name, or nil when absent.
func (s *PostgresStore) GetByName(ctx context.Context, name string) (*Ingredient, error) {
	var ing Ingredient
	err := s.db.GetContext(ctx, &ing, "SELECT * FROM pantry_ingredients WHERE name = $1", name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pantry ingredient by name: %w", err)
	}
	return &ing, nil
}

// Insert adds a new ingredient and fills in its assigned ID.
func (s *PostgresStore) Insert(ctx context.Context, ing *Ingredient) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO pantry_ingredients (name, category, calories, protein, carbs, fat, serving_size, serving_unit, count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		ing.Name, ing.Category, ing.Calories, ing.Protein, ing.Carbs, ing.Fat,
		ing.ServingSize, ing.ServingUnit, ing.Count,
	).Scan(&ing.ID)
	if err != nil {
		return fmt.Errorf("failed to insert pantry ingredient: %w", err)
	}
	return nil
}

// Update overwrites an existing ingredient.
func (s *PostgresStore) Update(ctx context.Context, ing *Ingredient) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pantry_ingredients SET name = $2, category = $3, calories = $4, protein = $5,
		 carbs = $6, fat = $7, serving_size = $8, serving_unit = $9, count = $10 WHERE id = $1`,
		ing.ID, ing.Name, ing.Category, ing.Calories, ing.Protein, ing.Carbs, ing.Fat,
		ing.ServingSize, ing.ServingUnit, ing.Count,
	)
	if err != nil {
		return fmt.Errorf("failed to update pantry ingredient: %w", err)
	}
	return nil
}

// IncrementCount bumps the quantity of an existing ingredient.
func (s *PostgresStore) IncrementCount(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE pantry_ingredients SET count = count + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to increment pantry ingredient count: %w", err)
	}
	return nil
}

// Delete removes an ingredient.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pantry_ingredients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete pantry ingredient: %w", err)
	}
	return nil
}

// Count returns the number of distinct pantry ingredients.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pantry_ingredients").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pantry ingredients: %w", err)
	}
	return count, nil
}
