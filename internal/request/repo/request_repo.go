package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/khidmajo/khidma-api/internal/request/entity"
	"github.com/khidmajo/khidma-api/internal/storage"
)

// RequestRepo provides data access for service requests using sqlx.
type RequestRepo struct {
	db *sqlx.DB
}

func NewRequestRepo(db *sqlx.DB) *RequestRepo { return &RequestRepo{db: db} }

// EnsureTable creates the requests table if not exists (idempotent).
func (r *RequestRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS service_requests (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  provider_id TEXT,
  category_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_service_requests_customer ON service_requests(customer_id);
CREATE INDEX IF NOT EXISTS idx_service_requests_provider ON service_requests(provider_id);
CREATE INDEX IF NOT EXISTS idx_service_requests_status ON service_requests(status);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const requestColumns = `id, customer_id, provider_id, category_id, title, description,
	city, status, created_at, updated_at, completed_at`

func (r *RequestRepo) Create(ctx context.Context, req *entity.Request) error {
	const q = `INSERT INTO service_requests (id,customer_id,provider_id,category_id,title,description,city,status,created_at,updated_at)
		VALUES (:id,:customer_id,:provider_id,:category_id,:title,:description,:city,:status,:created_at,:updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, req); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM service_requests WHERE id=$1`
	var row entity.Request
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &row, nil
}

func (r *RequestRepo) Update(ctx context.Context, req *entity.Request) error {
	const q = `UPDATE service_requests SET provider_id=:provider_id, status=:status,
		updated_at=:updated_at, completed_at=:completed_at WHERE id=:id`
	res, err := r.db.NamedExecContext(ctx, q, req)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *RequestRepo) ListByCustomer(ctx context.Context, customerID string) ([]*entity.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM service_requests WHERE customer_id=$1 ORDER BY created_at DESC`
	var rows []*entity.Request
	if err := r.db.SelectContext(ctx, &rows, q, customerID); err != nil {
		return nil, fmt.Errorf("list requests by customer: %w", err)
	}
	return rows, nil
}

func (r *RequestRepo) ListByProvider(ctx context.Context, providerID string) ([]*entity.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM service_requests WHERE provider_id=$1 ORDER BY created_at DESC`
	var rows []*entity.Request
	if err := r.db.SelectContext(ctx, &rows, q, providerID); err != nil {
		return nil, fmt.Errorf("list requests by provider: %w", err)
	}
	return rows, nil
}

func (r *RequestRepo) ListOpen(ctx context.Context, city string) ([]*entity.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM service_requests
		WHERE status='pending' AND provider_id IS NULL`
	args := []any{}
	if city != "" {
		q += ` AND lower(city)=lower($1)`
		args = append(args, city)
	}
	q += ` ORDER BY created_at DESC`
	var rows []*entity.Request
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list open requests: %w", err)
	}
	return rows, nil
}

// CancelOpenByProvider cancels every non-terminal request assigned to the
// provider and clears the assignment. Returns the number of rows touched.
func (r *RequestRepo) CancelOpenByProvider(ctx context.Context, providerID string) (int, error) {
	const q = `UPDATE service_requests SET status='cancelled', provider_id=NULL, updated_at=NOW()
		WHERE provider_id=$1 AND status IN ('pending','accepted','in_progress')`
	res, err := r.db.ExecContext(ctx, q, providerID)
	if err != nil {
		return 0, fmt.Errorf("cancel open requests: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
