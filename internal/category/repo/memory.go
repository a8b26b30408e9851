package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/khidmajo/khidma-api/internal/category/entity"
	"github.com/khidmajo/khidma-api/internal/storage"
)

// MemoryRepo is the in-memory category store for demo mode and tests.
type MemoryRepo struct {
	mu         sync.RWMutex
	categories map[string]*entity.Category // slug -> category
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{categories: make(map[string]*entity.Category)}
}

func (r *MemoryRepo) List(_ context.Context, activeOnly bool) ([]*entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Category
	for _, c := range r.categories {
		if activeOnly && !c.Active {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *MemoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.Slug]; ok {
		return storage.ErrDuplicate
	}
	cp := *c
	r.categories[c.Slug] = &cp
	return nil
}
