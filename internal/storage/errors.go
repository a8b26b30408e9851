// Package storage holds the sentinel errors shared by every repository
// implementation, so services can branch on outcomes without knowing
// whether rows live in PostgreSQL or in the in-memory demo store.
package storage

import "errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)
