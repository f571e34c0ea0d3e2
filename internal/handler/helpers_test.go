package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recipebox/recipe-api/internal/crypto"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/service"
	"github.com/recipebox/recipe-api/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	users   *testutil.Users
	recipes *testutil.Recipes
	images  *testutil.Images
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	users := testutil.NewUsers()
	recipes := testutil.NewRecipes()
	images := testutil.NewImages()
	tags := testutil.NewAttributes(model.KindTag)
	ingredients := testutil.NewAttributes(model.KindIngredient)

	hasher := crypto.NewHasher(crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	h := NewRouter(RouterConfig{
		Auth:           service.NewAuthService(users, testutil.NewTokens(), hasher),
		Tags:           service.NewAttributeService(tags),
		Ingredients:    service.NewAttributeService(ingredients),
		Recipes:        service.NewRecipeService(recipes, tags, ingredients, images),
		MaxUploadBytes: 1 << 20,
	})

	return &testServer{handler: h, users: users, recipes: recipes, images: images}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// login registers a user and returns a token for it.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/user/create", "", map[string]string{
		"email":    email,
		"password": "testpass123",
		"name":     "Test Name",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/user/token", "", map[string]string{
		"email":    email,
		"password": "testpass123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp model.TokenResponse
	decode(t, rec, &resp)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type validationBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}
