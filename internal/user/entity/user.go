package entity

import "time"

// User types recognised by the marketplace.
const (
	TypeCustomer = "customer"
	TypeProvider = "provider"
	TypeAdmin    = "admin"
)

// User represents an account row in the `users` table.
type User struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Name          string     `db:"name" json:"name"`
	Phone         string     `db:"phone" json:"phone"`
	City          string     `db:"city" json:"city"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	PasswordAlgo  string     `db:"password_algo" json:"-"`
	UserType      string     `db:"user_type" json:"user_type"`
	Verified      bool       `db:"verified" json:"verified"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"-"`
}

// PublicView is the subset of User returned by auth and admin endpoints.
type PublicView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
	Verified bool   `json:"verified"`
	Active   bool   `json:"active"`
}

// Public projects the API-safe view of a user.
func (u *User) Public() PublicView {
	return PublicView{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		UserType: u.UserType,
		Verified: u.Verified,
		Active:   u.Active,
	}
}
