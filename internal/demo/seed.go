// Package demo seeds the in-memory stores used when the API runs without
// a database. The fixture mirrors a small slice of the marketplace: an
// admin, a verified plumber, a customer with open work, and the standard
// category list.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/khidmajo/khidma-api/internal/auth"
	categoryentity "github.com/khidmajo/khidma-api/internal/category/entity"
	categoryrepo "github.com/khidmajo/khidma-api/internal/category/repo"
	requestentity "github.com/khidmajo/khidma-api/internal/request/entity"
	requestrepo "github.com/khidmajo/khidma-api/internal/request/repo"
	userentity "github.com/khidmajo/khidma-api/internal/user/entity"
	userrepo "github.com/khidmajo/khidma-api/internal/user/repo"
	verificationentity "github.com/khidmajo/khidma-api/internal/verification/entity"
	verificationrepo "github.com/khidmajo/khidma-api/internal/verification/repo"
	"github.com/khidmajo/khidma-api/pkg/utilities"
)

// Stores bundles the in-memory repositories the seed populates.
type Stores struct {
	Users         *userrepo.MemoryRepo
	Requests      *requestrepo.MemoryRepo
	Categories    *categoryrepo.MemoryRepo
	Verifications *verificationrepo.MemoryRepo
}

// NewStores allocates empty in-memory stores.
func NewStores() Stores {
	return Stores{
		Users:         userrepo.NewMemoryRepo(),
		Requests:      requestrepo.NewMemoryRepo(),
		Categories:    categoryrepo.NewMemoryRepo(),
		Verifications: verificationrepo.NewMemoryRepo(),
	}
}

// Known demo credentials.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"

	ProviderEmail    = "provider@example.com"
	ProviderPassword = "provider123"

	CustomerEmail    = "customer@example.com"
	CustomerPassword = "customer123"
)

// Seed fills the stores with the demo fixture. Passwords are hashed with
// the provided hasher so login works against the seeded accounts.
func Seed(ctx context.Context, s Stores, hasher auth.PasswordHasher) error {
	now := time.Now().UTC()

	mkUser := func(email, password, name, phone, city, userType string, verified bool) (*userentity.User, error) {
		hash, algo, err := hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		u := &userentity.User{
			ID:           utilities.NewID(utilities.PrefixUser),
			Email:        email,
			Name:         name,
			Phone:        phone,
			City:         city,
			PasswordHash: hash,
			PasswordAlgo: algo,
			UserType:     userType,
			Verified:     verified,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return u, s.Users.Create(ctx, u)
	}

	if _, err := mkUser(AdminEmail, AdminPassword, "Khidma Admin", "0791111111", "Amman", userentity.TypeAdmin, true); err != nil {
		return err
	}

	prov, err := mkUser(ProviderEmail, ProviderPassword, "Abu Khalil Plumbing", "0792222222", "Amman", userentity.TypeProvider, true)
	if err != nil {
		return err
	}
	cust, err := mkUser(CustomerEmail, CustomerPassword, "Lina Haddad", "0793333333", "Irbid", userentity.TypeCustomer, false)
	if err != nil {
		return err
	}

	// approved review record matching the provider's verified flag
	if err := s.Verifications.EnsurePending(ctx, prov.ID); err != nil {
		return err
	}
	if err := s.Verifications.SetDecision(ctx, prov.ID, verificationentity.StatusApproved, "documents checked", now); err != nil {
		return err
	}

	for _, c := range []struct{ slug, en, ar string }{
		{"plumbing", "Plumbing", "سباكة"},
		{"electrical", "Electrical", "كهرباء"},
		{"cleaning", "Cleaning", "تنظيف"},
		{"painting", "Painting", "دهان"},
		{"carpentry", "Carpentry", "نجارة"},
		{"ac-repair", "AC Repair", "صيانة مكيفات"},
	} {
		cat := &categoryentity.Category{
			ID:     utilities.NewID(utilities.PrefixCategory),
			Slug:   c.slug,
			NameEn: c.en,
			NameAr: c.ar,
			Active: true,
		}
		if err := s.Categories.Create(ctx, cat); err != nil {
			return err
		}
	}

	open := &requestentity.Request{
		ID:          utilities.NewID(utilities.PrefixRequest),
		CustomerID:  cust.ID,
		CategoryID:  "plumbing",
		Title:       "Kitchen sink leak",
		Description: "Water pooling under the sink cabinet.",
		City:        "Irbid",
		Status:      requestentity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Requests.Create(ctx, open); err != nil {
		return err
	}

	assigned := &requestentity.Request{
		ID:          utilities.NewID(utilities.PrefixRequest),
		CustomerID:  cust.ID,
		ProviderID:  &prov.ID,
		CategoryID:  "plumbing",
		Title:       "Water heater installation",
		Description: "Replace an old 50L heater.",
		City:        "Amman",
		Status:      requestentity.StatusAccepted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return s.Requests.Create(ctx, assigned)
}
