package service

import (
	"github.com/recipebox/recipe-api/internal/crypto"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/testutil"
)

var testHashParams = crypto.HashParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type authFixture struct {
	svc    *AuthService
	users  *testutil.Users
	tokens *testutil.Tokens
}

func newAuthFixture() authFixture {
	users := testutil.NewUsers()
	tokens := testutil.NewTokens()
	return authFixture{
		svc:    NewAuthService(users, tokens, crypto.NewHasher(testHashParams)),
		users:  users,
		tokens: tokens,
	}
}

type recipeFixture struct {
	svc         *RecipeService
	recipes     *testutil.Recipes
	tags        *testutil.Attributes
	ingredients *testutil.Attributes
	images      *testutil.Images
}

func newRecipeFixture() recipeFixture {
	f := recipeFixture{
		recipes:     testutil.NewRecipes(),
		tags:        testutil.NewAttributes(model.KindTag),
		ingredients: testutil.NewAttributes(model.KindIngredient),
		images:      testutil.NewImages(),
	}
	f.svc = NewRecipeService(f.recipes, f.tags, f.ingredients, f.images)
	return f
}

func ptr[T any](v T) *T {
	return &v
}
