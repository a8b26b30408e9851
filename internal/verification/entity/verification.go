package entity

import "time"

// Review statuses shared by provider-level records and documents.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Document types a provider may submit for review.
const (
	DocIdentity  = "identity_document"
	DocLicense   = "business_license"
	DocPortfolio = "portfolio_item"
)

// Document is one submitted verification document. The record carries
// metadata only; file storage lives outside this service.
type Document struct {
	ID         string     `db:"id" json:"id"`
	ProviderID string     `db:"provider_id" json:"provider_id"`
	Type       string     `db:"doc_type" json:"type"`
	Status     string     `db:"status" json:"status"`
	Notes      string     `db:"notes" json:"notes,omitempty"`
	UploadedAt time.Time  `db:"uploaded_at" json:"uploaded_at"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// ProviderVerification is the provider-level review record. Its Status is
// admin-controlled and deliberately independent of document sub-statuses.
type ProviderVerification struct {
	ProviderID string     `db:"provider_id" json:"provider_id"`
	Status     string     `db:"status" json:"status"`
	Notes      string     `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Documents  []Document `db:"-" json:"documents,omitempty"`
}

// ValidDocType reports whether t names a known document type.
func ValidDocType(t string) bool {
	switch t {
	case DocIdentity, DocLicense, DocPortfolio:
		return true
	}
	return false
}

// ValidDecision reports whether action is a legal review decision.
// "pending" is a starting state, never a decision.
func ValidDecision(action string) bool {
	return action == StatusApproved || action == StatusRejected
}
