package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recipeRowColumns = []string{
	"id", "user_id", "title", "time_minutes", "price", "link", "image", "created_at", "updated_at",
}

func TestRecipeRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)
	now := time.Now()

	t.Run("filters by tags and ingredients", func(t *testing.T) {
		mock.ExpectQuery(`FROM recipes WHERE user_id = \? ` +
			`AND EXISTS \(SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = recipes.id AND rt.tag_id IN \(\?, \?\)\) ` +
			`AND EXISTS \(SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id IN \(\?\)\) ` +
			`ORDER BY id ASC`).
			WithArgs(int64(1), int64(10), int64(11), int64(20)).
			WillReturnRows(sqlmock.NewRows(recipeRowColumns).
				AddRow(3, 1, "Cheesecake", 60, "20.00", "", "", now, now))
		mock.ExpectQuery(`SELECT recipe_id, tag_id FROM recipe_tags WHERE recipe_id IN \(\?\)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "tag_id"}).AddRow(3, 10).AddRow(3, 12))
		mock.ExpectQuery(`SELECT recipe_id, ingredient_id FROM recipe_ingredients WHERE recipe_id IN \(\?\)`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"recipe_id", "ingredient_id"}).AddRow(3, 20))

		recipes, err := repo.List(context.Background(), 1, model.RecipeFilter{
			TagIDs:        []int64{10, 11},
			IngredientIDs: []int64{20},
		})
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, model.Price(2000), recipes[0].Price)
		assert.Equal(t, []int64{10, 12}, recipes[0].TagIDs)
		assert.Equal(t, []int64{20}, recipes[0].IngredientIDs)
	})

	t.Run("no filter and no rows skips link queries", func(t *testing.T) {
		mock.ExpectQuery(`FROM recipes WHERE user_id = \? ORDER BY id ASC`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(recipeRowColumns))

		recipes, err := repo.List(context.Background(), 2, model.RecipeFilter{})
		require.NoError(t, err)
		assert.NotNil(t, recipes)
		assert.Empty(t, recipes)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectQuery(`FROM recipes WHERE id = \? AND user_id = \?`).
		WithArgs(int64(5), int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO recipes`).
		WithArgs(int64(1), "Cheesecake", 60, "20.00", "", "").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`INSERT INTO recipe_tags \(recipe_id, tag_id\) VALUES \(\?, \?\), \(\?, \?\)`).
		WithArgs(int64(42), int64(1), int64(42), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	rec := &model.Recipe{
		UserID:      1,
		Title:       "Cheesecake",
		TimeMinutes: 60,
		Price:       2000,
		TagIDs:      []int64{1, 2, 2},
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, int64(42), rec.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	t.Run("replaces only flagged link sets", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT image FROM recipes WHERE id = \? AND user_id = \? FOR UPDATE`).
			WithArgs(int64(4), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"image"}).AddRow(""))
		mock.ExpectExec(`UPDATE recipes SET title = \?`).
			WithArgs("Curry", 30, "5.00", "", int64(4), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM recipe_tags WHERE recipe_id = \?`).
			WithArgs(int64(4)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		rec := &model.Recipe{ID: 4, UserID: 1, Title: "Curry", TimeMinutes: 30, Price: 500}
		require.NoError(t, repo.Update(context.Background(), rec, true, false))
	})

	t.Run("other owner rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT image FROM recipes WHERE id = \? AND user_id = \? FOR UPDATE`).
			WithArgs(int64(4), int64(2)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.Update(context.Background(), &model.Recipe{ID: 4, UserID: 2}, true, true)
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeRepository_SetImageAndDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecipeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT image FROM recipes`).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"image"}).AddRow("uploads/recipe/old.png"))
	mock.ExpectExec(`UPDATE recipes SET image = \?`).
		WithArgs("uploads/recipe/new.png", int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	previous, err := repo.SetImage(context.Background(), 1, 4, "uploads/recipe/new.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/old.png", previous)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT image FROM recipes`).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"image"}).AddRow("uploads/recipe/new.png"))
	mock.ExpectExec(`DELETE FROM recipes WHERE id = \? AND user_id = \?`).
		WithArgs(int64(4), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	image, err := repo.Delete(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/new.png", image)

	require.NoError(t, mock.ExpectationsWereMet())
}
