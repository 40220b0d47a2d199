package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store defines the recipe repository consumed by the discovery engine.
type Store interface {
	FindByIngredientSubstring(ctx context.Context, names []string) ([]Recipe, error)
	GetAllRecipes(ctx context.Context) ([]Recipe, error)
	GetByTag(ctx context.Context, tag string) ([]Recipe, error)
	UpsertRecipes(ctx context.Context, recipes []Recipe) error
	CountRecipes(ctx context.Context) (int, error)
}

// PostgresStore implements Store for PostgreSQL. Ingredients, instructions
// and tags are persisted as JSONB blobs; recipe_tags is a secondary index
// mapping recipe id to lowercase tag for category lookups.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects and creates the schema if missing.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		calories DOUBLE PRECISION NOT NULL DEFAULT 0,
		protein DOUBLE PRECISION NOT NULL DEFAULT 0,
		carbs DOUBLE PRECISION NOT NULL DEFAULT 0,
		fat DOUBLE PRECISION NOT NULL DEFAULT 0,
		cook_time_minutes INTEGER NOT NULL DEFAULT 0,
		servings INTEGER NOT NULL DEFAULT 0,
		ingredients JSONB,
		instructions JSONB,
		tags JSONB,
		source TEXT
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS recipe_tags (
		recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		tag TEXT NOT NULL,
		PRIMARY KEY (recipe_id, tag)
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipe_tags table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying connection so other stores can share it.
func (s *PostgresStore) DB() *sqlx.DB {
	return s.db
}

const recipeColumns = "id, title, calories, protein, carbs, fat, cook_time_minutes, servings, ingredients, instructions, tags, source"

// FindByIngredientSubstring returns candidate recipes whose ingredient blob
// contains any of the given names (OR of ILIKE patterns).
func (s *PostgresStore) FindByIngredientSubstring(ctx context.Context, names []string) ([]Recipe, error) {
	if len(names) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names))
	for i, name := range names {
		clauses = append(clauses, fmt.Sprintf("ingredients::text ILIKE $%d", i+1))
		args = append(args, "%"+name+"%")
	}
	query := fmt.Sprintf("SELECT %s FROM recipes WHERE %s", recipeColumns, strings.Join(clauses, " OR "))

	return s.queryRecipes(ctx, query, args...)
}

// GetAllRecipes returns the entire stored corpus.
func (s *PostgresStore) GetAllRecipes(ctx context.Context) ([]Recipe, error) {
	query := fmt.Sprintf("SELECT %s FROM recipes", recipeColumns)
	return s.queryRecipes(ctx, query)
}

// GetByTag returns recipes carrying the given tag, via the recipe_tags
// index. Tags are indexed lowercase.
func (s *PostgresStore) GetByTag(ctx context.Context, tag string) ([]Recipe, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM recipes WHERE id IN (SELECT recipe_id FROM recipe_tags WHERE tag = $1)",
		recipeColumns,
	)
	return s.queryRecipes(ctx, query, strings.ToLower(tag))
}

// UpsertRecipes saves recipes and refreshes their tag index rows in one
// transaction.
func (s *PostgresStore) UpsertRecipes(ctx context.Context, recipes []Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range recipes {
		ingredientsJSON, err := json.Marshal(r.Ingredients)
		if err != nil {
			return fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		instructionsJSON, err := json.Marshal(r.Instructions)
		if err != nil {
			return fmt.Errorf("failed to marshal instructions: %w", err)
		}
		tagsJSON, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO recipes (id, title, calories, protein, carbs, fat, cook_time_minutes, servings, ingredients, instructions, tags, source)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (id) DO UPDATE SET title = $2, calories = $3, protein = $4, carbs = $5, fat = $6,
			 cook_time_minutes = $7, servings = $8, ingredients = $9, instructions = $10, tags = $11, source = $12`,
			r.ID, r.Title, r.Calories, r.Protein, r.Carbs, r.Fat,
			r.CookTimeMinutes, r.Servings, ingredientsJSON, instructionsJSON, tagsJSON, r.Source,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert recipe %s: %w", r.ID, err)
		}

		if _, err = tx.ExecContext(ctx, "DELETE FROM recipe_tags WHERE recipe_id = $1", r.ID); err != nil {
			return fmt.Errorf("failed to clear tag index for recipe %s: %w", r.ID, err)
		}
		for _, tag := range r.Tags {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO recipe_tags (recipe_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				r.ID, strings.ToLower(tag),
			)
			if err != nil {
				return fmt.Errorf("failed to index tag for recipe %s: %w", r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}

// CountRecipes returns the size of the stored corpus.
func (s *PostgresStore) CountRecipes(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) queryRecipes(ctx context.Context, query string, args ...interface{}) ([]Recipe, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		var ingredientsJSON, instructionsJSON, tagsJSON []byte
		err := rows.Scan(
			&r.ID, &r.Title, &r.Calories, &r.Protein, &r.Carbs, &r.Fat,
			&r.CookTimeMinutes, &r.Servings,
			&ingredientsJSON, &instructionsJSON, &tagsJSON, &r.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		if err := json.Unmarshal(instructionsJSON, &r.Instructions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
		}
		if err := json.Unmarshal(tagsJSON, &r.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recipes, nil
}
