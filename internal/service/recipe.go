package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/repository"
	"github.com/recipebox/recipe-api/internal/storage"
)

// imagePrefix is the storage key prefix for recipe images.
const imagePrefix = "uploads/recipe/"

// RecipeStore persists recipes, scoped to their owner.
type RecipeStore interface {
	List(ctx context.Context, userID int64, filter model.RecipeFilter) ([]model.Recipe, error)
	GetByID(ctx context.Context, userID, id int64) (*model.Recipe, error)
	Create(ctx context.Context, rec *model.Recipe) error
	Update(ctx context.Context, rec *model.Recipe, setTags, setIngredients bool) error
	SetImage(ctx context.Context, userID, id int64, key string) (string, error)
	Delete(ctx context.Context, userID, id int64) (string, error)
}

// RecipeService handles recipe business logic. Every operation is scoped to
// the calling user; another user's recipe is indistinguishable from a missing one.
type RecipeService struct {
	recipes     RecipeStore
	tags        AttributeStore
	ingredients AttributeStore
	images      storage.Store
	validate    *validator.Validate
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(recipes RecipeStore, tags, ingredients AttributeStore, images storage.Store) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		tags:        tags,
		ingredients: ingredients,
		images:      images,
		validate:    newValidator(),
	}
}

// List returns the user's recipes narrowed by filter.
func (s *RecipeService) List(ctx context.Context, userID int64, filter model.RecipeFilter) ([]model.RecipeResponse, error) {
	recipes, err := s.recipes.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	out := make([]model.RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = toRecipeResponse(&recipes[i])
	}
	return out, nil
}

// Get returns one recipe with its tags and ingredients expanded.
func (s *RecipeService) Get(ctx context.Context, userID, id int64) (model.RecipeDetailResponse, error) {
	rec, err := s.get(ctx, userID, id)
	if err != nil {
		return model.RecipeDetailResponse{}, err
	}

	tags, err := s.tags.GetByIDs(ctx, rec.TagIDs)
	if err != nil {
		return model.RecipeDetailResponse{}, err
	}
	ingredients, err := s.ingredients.GetByIDs(ctx, rec.IngredientIDs)
	if err != nil {
		return model.RecipeDetailResponse{}, err
	}

	return model.RecipeDetailResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price,
		Link:        rec.Link,
		Image:       s.imageURL(rec.Image),
		Tags:        toAttributeResponses(tags),
		Ingredients: toAttributeResponses(ingredients),
	}, nil
}

// Create stores a new recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID int64, req model.RecipeRequest) (model.RecipeResponse, error) {
	if err := s.validateRequest(ctx, &req, false); err != nil {
		return model.RecipeResponse{}, err
	}

	rec := &model.Recipe{UserID: userID}
	applyRequest(rec, req, false)

	if err := s.recipes.Create(ctx, rec); err != nil {
		return model.RecipeResponse{}, err
	}
	return toRecipeResponse(rec), nil
}

// Replace overwrites every field of the recipe. Omitted tags, ingredients and
// link are reset to empty.
func (s *RecipeService) Replace(ctx context.Context, userID, id int64, req model.RecipeRequest) (model.RecipeResponse, error) {
	rec, err := s.get(ctx, userID, id)
	if err != nil {
		return model.RecipeResponse{}, err
	}
	if err := s.validateRequest(ctx, &req, false); err != nil {
		return model.RecipeResponse{}, err
	}

	applyRequest(rec, req, false)
	if err := s.recipes.Update(ctx, rec, true, true); err != nil {
		return model.RecipeResponse{}, mapRecipeErr(err)
	}
	return toRecipeResponse(rec), nil
}

// Patch changes only the fields present in req. A present tags or ingredients
// list replaces the whole set.
func (s *RecipeService) Patch(ctx context.Context, userID, id int64, req model.RecipeRequest) (model.RecipeResponse, error) {
	rec, err := s.get(ctx, userID, id)
	if err != nil {
		return model.RecipeResponse{}, err
	}
	if err := s.validateRequest(ctx, &req, true); err != nil {
		return model.RecipeResponse{}, err
	}

	applyRequest(rec, req, true)
	if err := s.recipes.Update(ctx, rec, req.Tags != nil, req.Ingredients != nil); err != nil {
		return model.RecipeResponse{}, mapRecipeErr(err)
	}
	return toRecipeResponse(rec), nil
}

// Delete removes the recipe and its stored image.
func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	image, err := s.recipes.Delete(ctx, userID, id)
	if err != nil {
		return mapRecipeErr(err)
	}
	s.removeImage(ctx, image)
	return nil
}

// UploadImage validates data as an image, stores it and attaches it to the
// recipe, removing the image it replaces. Invalid data leaves the recipe untouched.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id int64, data []byte) (model.RecipeImageResponse, error) {
	if _, err := s.get(ctx, userID, id); err != nil {
		return model.RecipeImageResponse{}, err
	}

	if len(data) == 0 {
		return model.RecipeImageResponse{}, newValidationError("image", "No file was submitted.")
	}
	format, ok := inspectImage(data)
	if !ok {
		return model.RecipeImageResponse{}, newValidationError("image", msgInvalidImage)
	}

	key := imagePrefix + uuid.NewString() + imageExtensions[format]
	if err := s.images.Save(ctx, key, data, "image/"+format); err != nil {
		return model.RecipeImageResponse{}, fmt.Errorf("storing image: %w", err)
	}

	previous, err := s.recipes.SetImage(ctx, userID, id, key)
	if err != nil {
		s.removeImage(ctx, key)
		return model.RecipeImageResponse{}, mapRecipeErr(err)
	}
	if previous != key {
		s.removeImage(ctx, previous)
	}

	return model.RecipeImageResponse{ID: id, Image: s.imageURL(key)}, nil
}

func (s *RecipeService) get(ctx context.Context, userID, id int64) (*model.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRecipeErr(err)
	}
	return rec, nil
}

// validateRequest normalizes and checks req. Unless partial, title,
// time_minutes and price are mandatory. Referenced tags and ingredients must
// exist; their owner is not checked.
func (s *RecipeService) validateRequest(ctx context.Context, req *model.RecipeRequest, partial bool) error {
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	if req.Link != nil {
		l := strings.TrimSpace(*req.Link)
		req.Link = &l
	}

	verr := &ValidationError{}
	verr.Merge(validateStruct(s.validate, req))

	if !partial {
		if req.Title == nil {
			verr.Add("title", msgRequired)
		}
		if req.TimeMinutes == nil {
			verr.Add("time_minutes", msgRequired)
		}
		if req.Price == nil {
			verr.Add("price", msgRequired)
		}
	}

	if req.Tags != nil {
		if err := s.checkExists(ctx, s.tags, *req.Tags, verr); err != nil {
			return err
		}
	}
	if req.Ingredients != nil {
		if err := s.checkExists(ctx, s.ingredients, *req.Ingredients, verr); err != nil {
			return err
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// checkExists reports unknown ids under the store's plural field name,
// "tags" or "ingredients".
func (s *RecipeService) checkExists(ctx context.Context, store AttributeStore, ids []int64, verr *ValidationError) error {
	if len(ids) == 0 {
		return nil
	}
	field := string(store.Kind()) + "s"

	found, err := store.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	known := make(map[int64]bool, len(found))
	for _, a := range found {
		known[a.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			verr.Add(field, fmt.Sprintf("Invalid pk %q - object does not exist.", fmt.Sprint(id)))
		}
	}
	return nil
}

// applyRequest copies req onto rec. For a full write, omitted optional
// fields are reset; for a partial write they are left alone.
func applyRequest(rec *model.Recipe, req model.RecipeRequest, partial bool) {
	if req.Title != nil {
		rec.Title = *req.Title
	}
	if req.TimeMinutes != nil {
		rec.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		rec.Price = *req.Price
	}

	switch {
	case req.Link != nil:
		rec.Link = *req.Link
	case !partial:
		rec.Link = ""
	}

	switch {
	case req.Tags != nil:
		rec.TagIDs = uniqueIDs(*req.Tags)
	case !partial:
		rec.TagIDs = []int64{}
	}

	switch {
	case req.Ingredients != nil:
		rec.IngredientIDs = uniqueIDs(*req.Ingredients)
	case !partial:
		rec.IngredientIDs = []int64{}
	}
}

func (s *RecipeService) imageURL(key string) *string {
	if key == "" {
		return nil
	}
	u := s.images.URL(key)
	return &u
}

// removeImage deletes a stored image. Failures only leave an orphaned file,
// so they are logged rather than returned.
func (s *RecipeService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		slog.Error("failed to delete recipe image", "key", key, "error", err)
	}
}

func mapRecipeErr(err error) error {
	if errors.Is(err, repository.ErrRecipeNotFound) {
		return ErrRecipeNotFound
	}
	return err
}

func toRecipeResponse(rec *model.Recipe) model.RecipeResponse {
	tags := rec.TagIDs
	if tags == nil {
		tags = []int64{}
	}
	ingredients := rec.IngredientIDs
	if ingredients == nil {
		ingredients = []int64{}
	}

	return model.RecipeResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		TimeMinutes: rec.TimeMinutes,
		Price:       rec.Price,
		Link:        rec.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

// uniqueIDs drops repeated IDs, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
