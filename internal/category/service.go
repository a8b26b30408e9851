package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/khidmajo/khidma-api/internal/category/entity"
	"github.com/khidmajo/khidma-api/internal/storage"
	"github.com/khidmajo/khidma-api/pkg/utilities"
)

// Store is the category persistence surface.
type Store interface {
	List(ctx context.Context, activeOnly bool) ([]*entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
}

var (
	ErrValidation = errors.New("invalid input")
	ErrSlugTaken  = errors.New("category slug already exists")
)

// Service encapsulates category management.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns categories; activeOnly hides disabled ones for the public
// browse page.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*entity.Category, error) {
	return s.store.List(ctx, activeOnly)
}

// Create adds a category. The slug must be unique.
func (s *Service) Create(ctx context.Context, slug, nameEn, nameAr string) (*entity.Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" || strings.TrimSpace(nameEn) == "" {
		return nil, fmt.Errorf("%w: slug and name_en are required", ErrValidation)
	}
	c := &entity.Category{
		ID:     utilities.NewID(utilities.PrefixCategory),
		Slug:   slug,
		NameEn: strings.TrimSpace(nameEn),
		NameAr: strings.TrimSpace(nameAr),
		Active: true,
	}
	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return c, nil
}
