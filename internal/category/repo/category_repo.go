package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/khidmajo/khidma-api/internal/category/entity"
	"github.com/khidmajo/khidma-api/internal/storage"
)

// CategoryRepo provides data access for service categories using sqlx.
type CategoryRepo struct {
	db *sqlx.DB
}

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// EnsureTable creates the categories table if not exists (idempotent).
func (r *CategoryRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  slug TEXT UNIQUE NOT NULL,
  name_en TEXT NOT NULL,
  name_ar TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT true
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	q := `SELECT id, slug, name_en, name_ar, active FROM categories`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY slug`
	var rows []*entity.Category
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return rows, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	const q = `INSERT INTO categories (id, slug, name_en, name_ar, active)
		VALUES (:id, :slug, :name_en, :name_ar, :active)`
	if _, err := r.db.NamedExecContext(ctx, q, c); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}
