package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/internal/verification/entity"
)

// MemoryRepo is the in-memory verification store for demo mode and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]*entity.ProviderVerification
	docs    map[string][]entity.Document // provider id -> documents
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: make(map[string]*entity.ProviderVerification),
		docs:    make(map[string][]entity.Document),
	}
}

func (r *MemoryRepo) EnsurePending(_ context.Context, providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[providerID]; ok {
		return nil
	}
	r.records[providerID] = &entity.ProviderVerification{
		ProviderID: providerID,
		Status:     entity.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, providerID string) (*entity.ProviderVerification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[providerID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *rec
	cp.Documents = append([]entity.Document(nil), r.docs[providerID]...)
	return &cp, nil
}

func (r *MemoryRepo) SetDecision(_ context.Context, providerID, status, notes string, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[providerID]
	if !ok {
		return storage.ErrNotFound
	}
	rec.Status = status
	rec.Notes = notes
	rec.ReviewedAt = &reviewedAt
	return nil
}

func (r *MemoryRepo) ListPending(_ context.Context) ([]*entity.ProviderVerification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProviderVerification
	for _, rec := range r.records {
		if rec.Status != entity.StatusPending {
			continue
		}
		cp := *rec
		cp.Documents = append([]entity.Document(nil), r.docs[rec.ProviderID]...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) AddDocument(_ context.Context, doc *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ProviderID] = append(r.docs[doc.ProviderID], *doc)
	return nil
}

func (r *MemoryRepo) SetDocumentDecision(_ context.Context, providerID, docID, status, notes string, reviewedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.docs[providerID]
	for i := range docs {
		if docs[i].ID == docID {
			docs[i].Status = status
			docs[i].Notes = notes
			docs[i].ReviewedAt = &reviewedAt
			return nil
		}
	}
	return storage.ErrNotFound
}

func (r *MemoryRepo) ListDocuments(_ context.Context, providerID string) ([]entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := append([]entity.Document(nil), r.docs[providerID]...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.After(docs[j].UploadedAt) })
	return docs, nil
}
