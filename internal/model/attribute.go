package model

// AttributeKind distinguishes the per-user label registries that can be attached to recipes.
type AttributeKind string

const (
	KindTag        AttributeKind = "tag"
	KindIngredient AttributeKind = "ingredient"
)

// Attribute is a named, user-owned label. Tags and ingredients share this shape
// but live in separate tables.
type Attribute struct {
	ID     int64
	UserID int64
	Name   string
}

// AttributeRequest represents a tag or ingredient creation request.
type AttributeRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// AttributeResponse is the API shape of a tag or ingredient.
type AttributeResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
