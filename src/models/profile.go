package models

import (
	"rewards/src/types"

	"github.com/google/uuid"
)

// Profile is the app-side record for one authenticated identity. ID is the
// auth provider uid, not a generated key. IsAdmin is only ever flipped
// directly in the database; the profile write path never touches it.
type Profile struct {
	ID       string `gorm:"primarykey" json:"id"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	UpiID    string `json:"upi_id,omitempty"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`

	Transactions []Transaction `gorm:"foreignKey:user_id" json:"transactions,omitempty"`

	types.Timestamps
}

// Notification is a persisted per-user message written by the review
// consumer ("your reward was paid", "attempt rejected").
type Notification struct {
	ID            uuid.UUID    `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string       `gorm:"index" json:"user_id"`
	Title         string       `json:"title"`
	Body          *string      `json:"body,omitempty"`
	ReferenceType string       `json:"ref_type"`
	ReferenceID   string       `json:"ref_id"`
	ReferenceBody *types.JSONB `gorm:"type:jsonb" json:"ref_body,omitempty"`
	Read          bool         `gorm:"default:false" json:"read"`

	types.Timestamps
}
