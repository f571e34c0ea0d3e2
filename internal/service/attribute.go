package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/recipebox/recipe-api/internal/model"
)

// AttributeStore persists one kind of recipe attribute.
type AttributeStore interface {
	Kind() model.AttributeKind
	ListByUser(ctx context.Context, userID int64) ([]model.Attribute, error)
	Create(ctx context.Context, attr *model.Attribute) error
	GetByIDs(ctx context.Context, ids []int64) ([]model.Attribute, error)
}

// AttributeService manages a user's tags or ingredients.
type AttributeService struct {
	repo     AttributeStore
	validate *validator.Validate
}

// NewAttributeService creates a service over repo.
func NewAttributeService(repo AttributeStore) *AttributeService {
	return &AttributeService{repo: repo, validate: newValidator()}
}

// List returns the user's attributes, ordered by name descending.
func (s *AttributeService) List(ctx context.Context, userID int64) ([]model.AttributeResponse, error) {
	attrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAttributeResponses(attrs), nil
}

// Create adds an attribute owned by userID. Duplicate names are allowed.
func (s *AttributeService) Create(ctx context.Context, userID int64, req model.AttributeRequest) (model.AttributeResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if verr := validateStruct(s.validate, req); verr != nil {
		return model.AttributeResponse{}, verr
	}

	attr := &model.Attribute{UserID: userID, Name: req.Name}
	if err := s.repo.Create(ctx, attr); err != nil {
		return model.AttributeResponse{}, err
	}

	return model.AttributeResponse{ID: attr.ID, Name: attr.Name}, nil
}

func toAttributeResponses(attrs []model.Attribute) []model.AttributeResponse {
	out := make([]model.AttributeResponse, len(attrs))
	for i, a := range attrs {
		out[i] = model.AttributeResponse{ID: a.ID, Name: a.Name}
	}
	return out
}
