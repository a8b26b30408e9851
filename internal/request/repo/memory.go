package repo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/khidmajo/khidma-api/internal/request/entity"
	"github.com/khidmajo/khidma-api/internal/storage"
)

// MemoryRepo is the in-memory request store for demo mode and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	requests map[string]*entity.Request
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{requests: make(map[string]*entity.Request)}
}

func (r *MemoryRepo) Create(_ context.Context, req *entity.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*entity.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *MemoryRepo) Update(_ context.Context, req *entity.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return storage.ErrNotFound
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *MemoryRepo) ListByCustomer(_ context.Context, customerID string) ([]*entity.Request, error) {
	return r.listWhere(func(req *entity.Request) bool {
		return req.CustomerID == customerID
	}), nil
}

func (r *MemoryRepo) ListByProvider(_ context.Context, providerID string) ([]*entity.Request, error) {
	return r.listWhere(func(req *entity.Request) bool {
		return req.ProviderID != nil && *req.ProviderID == providerID
	}), nil
}

func (r *MemoryRepo) ListOpen(_ context.Context, city string) ([]*entity.Request, error) {
	return r.listWhere(func(req *entity.Request) bool {
		if req.Status != entity.StatusPending || req.ProviderID != nil {
			return false
		}
		return city == "" || strings.EqualFold(req.City, city)
	}), nil
}

func (r *MemoryRepo) CancelOpenByProvider(_ context.Context, providerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if req.ProviderID == nil || *req.ProviderID != providerID {
			continue
		}
		if entity.Terminal(req.Status) {
			continue
		}
		req.Status = entity.StatusCancelled
		req.ProviderID = nil
		req.UpdatedAt = time.Now().UTC()
		n++
	}
	return n, nil
}

func (r *MemoryRepo) listWhere(match func(*entity.Request) bool) []*entity.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Request
	for _, req := range r.requests {
		if match(req) {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
