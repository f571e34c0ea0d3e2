package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/recipebox/recipe-api/internal/model"
)

var ErrRecipeNotFound = errors.New("recipe not found")

const recipeColumns = `id, user_id, title, time_minutes, price, link, image, created_at, updated_at`

// RecipeRepository handles recipe persistence. Every read and write is scoped
// to the owning user: a recipe that exists but belongs to someone else is
// reported as ErrRecipeNotFound.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// List returns the user's recipes ordered by ID. Each non-empty filter list
// keeps recipes linked to at least one of its IDs; the lists combine with AND.
func (r *RecipeRepository) List(ctx context.Context, userID int64, filter model.RecipeFilter) ([]model.Recipe, error) {
	var b strings.Builder
	args := []any{userID}

	b.WriteString(`SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = ?`)
	if len(filter.TagIDs) > 0 {
		b.WriteString(` AND EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = recipes.id AND rt.tag_id IN (` +
			placeholders(len(filter.TagIDs)) + `))`)
		args = append(args, int64Args(filter.TagIDs)...)
	}
	if len(filter.IngredientIDs) > 0 {
		b.WriteString(` AND EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN (` +
			placeholders(len(filter.IngredientIDs)) + `))`)
		args = append(args, int64Args(filter.IngredientIDs)...)
	}
	b.WriteString(` ORDER BY id ASC`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []model.Recipe{}
	for rows.Next() {
		var rec model.Recipe
		if err := scanRecipe(rows, &rec); err != nil {
			return nil, err
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadLinks(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetByID retrieves one of the user's recipes with its links.
func (r *RecipeRepository) GetByID(ctx context.Context, userID, id int64) (*model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = ? AND user_id = ?`

	var rec model.Recipe
	if err := scanRecipe(r.db.QueryRowContext(ctx, query, id, userID), &rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	recipes := []model.Recipe{rec}
	if err := r.loadLinks(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// Create inserts the recipe and its tag and ingredient links in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, rec *model.Recipe) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (user_id, title, time_minutes, price, link, image) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.UserID, rec.Title, rec.TimeMinutes, rec.Price, rec.Link, rec.Image,
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}

		if err := insertLinks(ctx, tx, recipeTags, id, rec.TagIDs); err != nil {
			return err
		}
		if err := insertLinks(ctx, tx, recipeIngredients, id, rec.IngredientIDs); err != nil {
			return err
		}

		rec.ID = id
		return nil
	})
}

// Update overwrites the scalar fields of an existing recipe. The tag and
// ingredient sets are replaced only when the matching flag is set.
func (r *RecipeRepository) Update(ctx context.Context, rec *model.Recipe, setTags, setIngredients bool) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := lockRecipe(ctx, tx, rec.UserID, rec.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE recipes SET title = ?, time_minutes = ?, price = ?, link = ? WHERE id = ? AND user_id = ?`,
			rec.Title, rec.TimeMinutes, rec.Price, rec.Link, rec.ID, rec.UserID,
		); err != nil {
			return err
		}

		if setTags {
			if err := replaceLinks(ctx, tx, recipeTags, rec.ID, rec.TagIDs); err != nil {
				return err
			}
		}
		if setIngredients {
			if err := replaceLinks(ctx, tx, recipeIngredients, rec.ID, rec.IngredientIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetImage points the recipe at a new stored image and returns the key of the
// image it replaced (empty when there was none).
func (r *RecipeRepository) SetImage(ctx context.Context, userID, id int64, key string) (string, error) {
	var previous string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if previous, err = lockRecipe(ctx, tx, userID, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE recipes SET image = ? WHERE id = ? AND user_id = ?`, key, id, userID)
		return err
	})
	return previous, err
}

// Delete removes the recipe (links cascade) and returns its image key so the
// caller can remove the stored file.
func (r *RecipeRepository) Delete(ctx context.Context, userID, id int64) (string, error) {
	var image string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if image, err = lockRecipe(ctx, tx, userID, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND user_id = ?`, id, userID)
		return err
	})
	return image, err
}

// lockRecipe takes a row lock on the user's recipe and returns its image key.
func lockRecipe(ctx context.Context, tx *sql.Tx, userID, id int64) (string, error) {
	var image string
	err := tx.QueryRowContext(ctx,
		`SELECT image FROM recipes WHERE id = ? AND user_id = ? FOR UPDATE`, id, userID,
	).Scan(&image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRecipeNotFound
		}
		return "", err
	}
	return image, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner, rec *model.Recipe) error {
	return row.Scan(
		&rec.ID, &rec.UserID, &rec.Title, &rec.TimeMinutes, &rec.Price,
		&rec.Link, &rec.Image, &rec.CreatedAt, &rec.UpdatedAt,
	)
}

// linkTable describes a recipe many-to-many join table.
type linkTable struct {
	name   string
	column string
}

var (
	recipeTags        = linkTable{name: "recipe_tags", column: "tag_id"}
	recipeIngredients = linkTable{name: "recipe_ingredients", column: "ingredient_id"}
)

// insertLinks adds one row per id. ids must already be distinct.
func insertLinks(ctx context.Context, tx *sql.Tx, t linkTable, recipeID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	values := strings.Repeat("(?, ?), ", len(ids)-1) + "(?, ?)"
	args := make([]any, 0, len(ids)*2)
	for _, id := range ids {
		args = append(args, recipeID, id)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+t.name+` (recipe_id, `+t.column+`) VALUES `+values, args...)
	return err
}

func replaceLinks(ctx context.Context, tx *sql.Tx, t linkTable, recipeID int64, ids []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t.name+` WHERE recipe_id = ?`, recipeID); err != nil {
		return err
	}
	return insertLinks(ctx, tx, t, recipeID, ids)
}

// loadLinks fills TagIDs and IngredientIDs for the given recipes in place.
func (r *RecipeRepository) loadLinks(ctx context.Context, recipes []model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = i
		recipes[i].TagIDs = []int64{}
		recipes[i].IngredientIDs = []int64{}
	}

	tags, err := r.queryLinks(ctx, recipeTags, ids)
	if err != nil {
		return err
	}
	for _, l := range tags {
		i := index[l[0]]
		recipes[i].TagIDs = append(recipes[i].TagIDs, l[1])
	}

	ingredients, err := r.queryLinks(ctx, recipeIngredients, ids)
	if err != nil {
		return err
	}
	for _, l := range ingredients {
		i := index[l[0]]
		recipes[i].IngredientIDs = append(recipes[i].IngredientIDs, l[1])
	}
	return nil
}

// queryLinks returns (recipe_id, related_id) pairs for the given recipes.
func (r *RecipeRepository) queryLinks(ctx context.Context, t linkTable, recipeIDs []int64) ([][2]int64, error) {
	query := `SELECT recipe_id, ` + t.column + ` FROM ` + t.name +
		` WHERE recipe_id IN (` + placeholders(len(recipeIDs)) + `) ORDER BY recipe_id, ` + t.column

	rows, err := r.db.QueryContext(ctx, query, int64Args(recipeIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links [][2]int64
	for rows.Next() {
		var l [2]int64
		if err := rows.Scan(&l[0], &l[1]); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
