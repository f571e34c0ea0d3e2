package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/recipebox/recipe-api/internal/model"
)

// AttributeRepository persists one kind of recipe attribute (tags or ingredients).
type AttributeRepository struct {
	db    *sql.DB
	kind  model.AttributeKind
	table string
}

// NewAttributeRepository creates a repository for the given attribute kind.
func NewAttributeRepository(db *sql.DB, kind model.AttributeKind) *AttributeRepository {
	return &AttributeRepository{db: db, kind: kind, table: attributeTable(kind)}
}

func attributeTable(kind model.AttributeKind) string {
	switch kind {
	case model.KindTag:
		return "tags"
	case model.KindIngredient:
		return "ingredients"
	default:
		panic(fmt.Sprintf("repository: unknown attribute kind %q", kind))
	}
}

// Kind returns the attribute kind this repository stores.
func (r *AttributeRepository) Kind() model.AttributeKind {
	return r.kind
}

// ListByUser returns the user's attributes ordered by name, descending.
func (r *AttributeRepository) ListByUser(ctx context.Context, userID int64) ([]model.Attribute, error) {
	query := `SELECT id, user_id, name FROM ` + r.table + ` WHERE user_id = ? ORDER BY name DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttributes(rows)
}

// Create inserts an attribute and sets its generated ID.
func (r *AttributeRepository) Create(ctx context.Context, attr *model.Attribute) error {
	query := `INSERT INTO ` + r.table + ` (user_id, name) VALUES (?, ?)`

	result, err := r.db.ExecContext(ctx, query, attr.UserID, attr.Name)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	attr.ID = id
	return nil
}

// GetByIDs returns the attributes with the given IDs regardless of owner,
// ordered by name descending. Unknown IDs are skipped.
func (r *AttributeRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Attribute, error) {
	if len(ids) == 0 {
		return []model.Attribute{}, nil
	}

	query := `SELECT id, user_id, name FROM ` + r.table +
		` WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY name DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAttributes(rows)
}

func scanAttributes(rows *sql.Rows) ([]model.Attribute, error) {
	attrs := []model.Attribute{}
	for rows.Next() {
		var a model.Attribute
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name); err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, rows.Err()
}
