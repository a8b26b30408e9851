package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/internal/verification/entity"
)

// VerificationRepo persists provider verification records and their
// documents using sqlx.
type VerificationRepo struct {
	db *sqlx.DB
}

func NewVerificationRepo(db *sqlx.DB) *VerificationRepo { return &VerificationRepo{db: db} }

// EnsureTable creates the verification tables if not exists (idempotent).
func (r *VerificationRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS provider_verifications (
  provider_id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  reviewed_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS verification_documents (
  id TEXT PRIMARY KEY,
  provider_id TEXT NOT NULL REFERENCES provider_verifications(provider_id),
  doc_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT NOT NULL DEFAULT '',
  uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  reviewed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_verification_documents_provider ON verification_documents(provider_id);
CREATE INDEX IF NOT EXISTS idx_provider_verifications_status ON provider_verifications(status);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// EnsurePending inserts a pending record unless one already exists.
func (r *VerificationRepo) EnsurePending(ctx context.Context, providerID string) error {
	const q = `INSERT INTO provider_verifications (provider_id, status) VALUES ($1, 'pending')
		ON CONFLICT (provider_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, providerID); err != nil {
		return fmt.Errorf("ensure pending verification: %w", err)
	}
	return nil
}

// Get loads a record and its documents or storage.ErrNotFound.
func (r *VerificationRepo) Get(ctx context.Context, providerID string) (*entity.ProviderVerification, error) {
	const q = `SELECT provider_id, status, notes, created_at, reviewed_at
		FROM provider_verifications WHERE provider_id=$1`
	var rec entity.ProviderVerification
	if err := r.db.GetContext(ctx, &rec, q, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get verification: %w", err)
	}
	docs, err := r.ListDocuments(ctx, providerID)
	if err != nil {
		return nil, err
	}
	rec.Documents = docs
	return &rec, nil
}

// SetDecision records a provider-level review decision.
func (r *VerificationRepo) SetDecision(ctx context.Context, providerID, status, notes string, reviewedAt time.Time) error {
	const q = `UPDATE provider_verifications SET status=$2, notes=$3, reviewed_at=$4 WHERE provider_id=$1`
	res, err := r.db.ExecContext(ctx, q, providerID, status, notes, reviewedAt)
	if err != nil {
		return fmt.Errorf("set verification decision: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListPending returns the review queue ordered oldest first so admins
// work through submissions fairly.
func (r *VerificationRepo) ListPending(ctx context.Context) ([]*entity.ProviderVerification, error) {
	const q = `SELECT provider_id, status, notes, created_at, reviewed_at
		FROM provider_verifications WHERE status='pending' ORDER BY created_at ASC`
	var recs []*entity.ProviderVerification
	if err := r.db.SelectContext(ctx, &recs, q); err != nil {
		return nil, fmt.Errorf("list pending verifications: %w", err)
	}
	return recs, nil
}

// AddDocument inserts a submitted document row.
func (r *VerificationRepo) AddDocument(ctx context.Context, doc *entity.Document) error {
	const q = `INSERT INTO verification_documents (id, provider_id, doc_type, status, notes, uploaded_at)
		VALUES (:id, :provider_id, :doc_type, :status, :notes, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, q, doc); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// SetDocumentDecision records a per-document review decision.
func (r *VerificationRepo) SetDocumentDecision(ctx context.Context, providerID, docID, status, notes string, reviewedAt time.Time) error {
	const q = `UPDATE verification_documents SET status=$3, notes=$4, reviewed_at=$5
		WHERE id=$2 AND provider_id=$1`
	res, err := r.db.ExecContext(ctx, q, providerID, docID, status, notes, reviewedAt)
	if err != nil {
		return fmt.Errorf("set document decision: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListDocuments returns a provider's documents, newest upload first.
func (r *VerificationRepo) ListDocuments(ctx context.Context, providerID string) ([]entity.Document, error) {
	const q = `SELECT id, provider_id, doc_type, status, notes, uploaded_at, reviewed_at
		FROM verification_documents WHERE provider_id=$1 ORDER BY uploaded_at DESC`
	var docs []entity.Document
	if err := r.db.SelectContext(ctx, &docs, q, providerID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}
