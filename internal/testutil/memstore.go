// Package testutil provides in-memory stand-ins for the MySQL repositories
// and the image store. They honour the same ownership and not-found rules as
// the real implementations and return the same sentinel errors.
package testutil

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/recipebox/recipe-api/internal/model"
	"github.com/recipebox/recipe-api/internal/repository"
)

// Users is an in-memory user store with case-insensitive email lookup.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
}

func NewUsers() *Users {
	return &Users{byID: map[int64]model.User{}}
}

func (u *Users) Create(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	u.nextID++
	user.ID = u.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	u.byID[user.ID] = *user
	return nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.byID {
		if strings.EqualFold(existing.Email, email) {
			user := existing
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (u *Users) GetByID(_ context.Context, id int64) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user, ok := u.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (u *Users) Update(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing, ok := u.byID[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	existing.Name = user.Name
	existing.PasswordHash = user.PasswordHash
	existing.UpdatedAt = time.Now()
	u.byID[user.ID] = existing
	return nil
}

func (u *Users) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing, ok := u.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	existing.LastLogin = &at
	u.byID[id] = existing
	return nil
}

// SetActive flips a user's active flag.
func (u *Users) SetActive(id int64, active bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing := u.byID[id]
	existing.IsActive = active
	u.byID[id] = existing
}

// Tokens is an in-memory token store holding one key per user.
type Tokens struct {
	mu     sync.Mutex
	byUser map[int64]string
}

func NewTokens() *Tokens {
	return &Tokens{byUser: map[int64]string{}}
}

func (t *Tokens) GetOrCreate(_ context.Context, userID int64, key string) (*model.AuthToken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.byUser[userID]; ok {
		key = existing
	} else {
		t.byUser[userID] = key
	}
	return &model.AuthToken{Key: key, UserID: userID, CreatedAt: time.Now()}, nil
}

func (t *Tokens) GetUserIDByKey(_ context.Context, key string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for userID, k := range t.byUser {
		if k == key {
			return userID, nil
		}
	}
	return 0, repository.ErrTokenNotFound
}

// Attributes is an in-memory tag or ingredient store.
type Attributes struct {
	mu     sync.Mutex
	kind   model.AttributeKind
	nextID int64
	rows   []model.Attribute
}

func NewAttributes(kind model.AttributeKind) *Attributes {
	return &Attributes{kind: kind}
}

func (a *Attributes) Kind() model.AttributeKind {
	return a.kind
}

func (a *Attributes) ListByUser(_ context.Context, userID int64) ([]model.Attribute, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := []model.Attribute{}
	for _, row := range a.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	sortByNameDesc(out)
	return out, nil
}

func (a *Attributes) Create(_ context.Context, attr *model.Attribute) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	attr.ID = a.nextID
	a.rows = append(a.rows, *attr)
	return nil
}

func (a *Attributes) GetByIDs(_ context.Context, ids []int64) ([]model.Attribute, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := []model.Attribute{}
	for _, row := range a.rows {
		if slices.Contains(ids, row.ID) {
			out = append(out, row)
		}
	}
	sortByNameDesc(out)
	return out, nil
}

func sortByNameDesc(attrs []model.Attribute) {
	sort.SliceStable(attrs, func(i, j int) bool {
		if attrs[i].Name != attrs[j].Name {
			return attrs[i].Name > attrs[j].Name
		}
		return attrs[i].ID > attrs[j].ID
	})
}

// Recipes is an in-memory recipe store scoped by owner.
type Recipes struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Recipe
}

func NewRecipes() *Recipes {
	return &Recipes{rows: map[int64]model.Recipe{}}
}

func (r *Recipes) List(_ context.Context, userID int64, filter model.RecipeFilter) ([]model.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Recipe{}
	for _, rec := range r.rows {
		if rec.UserID != userID {
			continue
		}
		if len(filter.TagIDs) > 0 && !intersects(rec.TagIDs, filter.TagIDs) {
			continue
		}
		if len(filter.IngredientIDs) > 0 && !intersects(rec.IngredientIDs, filter.IngredientIDs) {
			continue
		}
		out = append(out, clone(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Recipes) GetByID(_ context.Context, userID, id int64) (*model.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok || rec.UserID != userID {
		return nil, repository.ErrRecipeNotFound
	}
	c := clone(rec)
	return &c, nil
}

func (r *Recipes) Create(_ context.Context, rec *model.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	r.rows[rec.ID] = clone(*rec)
	return nil
}

func (r *Recipes) Update(_ context.Context, rec *model.Recipe, setTags, setIngredients bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return repository.ErrRecipeNotFound
	}
	existing.Title = rec.Title
	existing.TimeMinutes = rec.TimeMinutes
	existing.Price = rec.Price
	existing.Link = rec.Link
	if setTags {
		existing.TagIDs = slices.Clone(rec.TagIDs)
	}
	if setIngredients {
		existing.IngredientIDs = slices.Clone(rec.IngredientIDs)
	}
	existing.UpdatedAt = time.Now()
	r.rows[rec.ID] = existing
	return nil
}

func (r *Recipes) SetImage(_ context.Context, userID, id int64, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[id]
	if !ok || existing.UserID != userID {
		return "", repository.ErrRecipeNotFound
	}
	previous := existing.Image
	existing.Image = key
	r.rows[id] = existing
	return previous, nil
}

func (r *Recipes) Delete(_ context.Context, userID, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[id]
	if !ok || existing.UserID != userID {
		return "", repository.ErrRecipeNotFound
	}
	delete(r.rows, id)
	return existing.Image, nil
}

func clone(rec model.Recipe) model.Recipe {
	rec.TagIDs = slices.Clone(rec.TagIDs)
	if rec.TagIDs == nil {
		rec.TagIDs = []int64{}
	}
	rec.IngredientIDs = slices.Clone(rec.IngredientIDs)
	if rec.IngredientIDs == nil {
		rec.IngredientIDs = []int64{}
	}
	return rec
}

func intersects(have, want []int64) bool {
	for _, id := range have {
		if slices.Contains(want, id) {
			return true
		}
	}
	return false
}

// Images is an in-memory image store.
type Images struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewImages() *Images {
	return &Images{Objects: map[string][]byte{}}
}

func (i *Images) Save(_ context.Context, key string, data []byte, _ string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Objects[key] = slices.Clone(data)
	return nil
}

func (i *Images) Delete(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Objects, key)
	return nil
}

func (i *Images) URL(key string) string {
	return "http://media.test/" + key
}

// Has reports whether key is stored.
func (i *Images) Has(key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.Objects[key]
	return ok
}

// Len returns the number of stored objects.
func (i *Images) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.Objects)
}
