package model

import "time"

// Recipe represents a recipe row together with its tag and ingredient links.
type Recipe struct {
	ID            int64
	UserID        int64
	Title         string
	TimeMinutes   int
	Price         Price
	Link          string
	Image         string // storage key, empty when no image is attached
	TagIDs        []int64
	IngredientIDs []int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecipeFilter narrows a recipe listing. An empty slice means "no restriction".
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// RecipeRequest is the payload for create, full replace and partial update.
// Pointer fields distinguish a missing key from an explicit zero value; which
// keys are mandatory depends on the operation.
type RecipeRequest struct {
	Title       *string  `json:"title" validate:"omitnil,notblank,max=255"`
	TimeMinutes *int     `json:"time_minutes" validate:"omitnil,min=0,max=2147483647"`
	Price       *Price   `json:"price" validate:"omitnil,price"`
	Link        *string  `json:"link" validate:"omitnil,max=255"`
	Tags        *[]int64 `json:"tags"`
	Ingredients *[]int64 `json:"ingredients"`
}

// RecipeResponse is the list shape of a recipe: related objects by id.
type RecipeResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       Price   `json:"price"`
	Link        string  `json:"link"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// RecipeDetailResponse nests the related tags and ingredients.
type RecipeDetailResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       Price               `json:"price"`
	Link        string              `json:"link"`
	Image       *string             `json:"image"`
	Tags        []AttributeResponse `json:"tags"`
	Ingredients []AttributeResponse `json:"ingredients"`
}

// RecipeImageResponse is returned by the image upload endpoint.
type RecipeImageResponse struct {
	ID    int64   `json:"id"`
	Image *string `json:"image"`
}
