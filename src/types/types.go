package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// StringList is stored as a jsonb array column. Offer steps keep their
// authored order.
type StringList []string

func (a StringList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *StringList) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

// Maybe distinguishes "field absent from the patch" from "field set to a
// value" (including the zero value / null). A Maybe with Set=false leaves
// the column untouched.
type Maybe[T any] struct {
	Set bool
	Val T
}

func Some[T any](v T) Maybe[T] {
	return Maybe[T]{Set: true, Val: v}
}

func (m *Maybe[T]) UnmarshalJSON(b []byte) error {
	m.Set = true
	return json.Unmarshal(b, &m.Val)
}

func (m Maybe[T]) MarshalJSON() ([]byte, error) {
	if !m.Set {
		return []byte("null"), nil
	}
	return json.Marshal(m.Val)
}

type TransactionStatus string

const (
	TRANSACTION_PENDING  TransactionStatus = "pending"
	TRANSACTION_REJECTED TransactionStatus = "rejected"
	TRANSACTION_PAID     TransactionStatus = "paid"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TRANSACTION_PENDING, TRANSACTION_REJECTED, TRANSACTION_PAID:
		return true
	}
	return false
}

// Final reports whether the status closes the attempt for good. Only paid
// rows are immutable history; rejected rows can be re-opened by the user
// re-initiating the offer.
func (s TransactionStatus) Final() bool {
	return s == TRANSACTION_PAID
}

type ChangeOp string

const (
	CHANGE_INSERT ChangeOp = "insert"
	CHANGE_UPDATE ChangeOp = "update"
	CHANGE_DELETE ChangeOp = "delete"
)

// Change is what the realtime feed delivers: a notification that something
// in a table changed, never the changed rows themselves. Key carries the
// row scope used for filtered registrations (user id for transactions).
type Change struct {
	Table string   `json:"table"`
	Op    ChangeOp `json:"op"`
	Key   string   `json:"key,omitempty"`
}

type Claims struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
	UID     string `json:"uid"`
	jwt.RegisteredClaims
}

type CreateOfferRequestBody struct {
	Title         string   `json:"title" binding:"required"`
	Amount        float64  `json:"amount" binding:"required,gt=0"`
	Icon          *string  `json:"icon,omitempty"`
	Label         *string  `json:"label,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Steps         []string `json:"steps,omitempty"`
	StoreURL      *string  `json:"store_url,omitempty" binding:"omitempty,url"`
	Active        *bool    `json:"active,omitempty"`
	RequiresProof bool     `json:"requires_proof,omitempty"`
}

type UpdateOfferRequestBody struct {
	Title         Maybe[string]   `json:"title"`
	Amount        Maybe[float64]  `json:"amount"`
	Icon          Maybe[*string]  `json:"icon"`
	Label         Maybe[*string]  `json:"label"`
	Description   Maybe[*string]  `json:"description"`
	Steps         Maybe[[]string] `json:"steps"`
	StoreURL      Maybe[*string]  `json:"store_url"`
	Active        Maybe[bool]     `json:"active"`
	RequiresProof Maybe[bool]     `json:"requires_proof"`
}

type CreateSlideRequestBody struct {
	Image string  `json:"image" binding:"required,url"`
	Link  *string `json:"link,omitempty" binding:"omitempty,url"`
}

type UpdateSlideRequestBody struct {
	Image Maybe[string]  `json:"image"`
	Link  Maybe[*string] `json:"link"`
}

type InitiateTransactionRequestBody struct {
	OfferTitle *string  `json:"offer_title,omitempty"`
	OfferIcon  *string  `json:"offer_icon,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
}

type ReviewTransactionRequestBody struct {
	Status     TransactionStatus `json:"status" binding:"required"`
	Notes      *string           `json:"notes,omitempty"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
}

type SubmitProofRequestBody struct {
	ProofURL string `json:"proof_url" binding:"required,url"`
}

type UpsertProfileRequestBody struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	UpiID    string `json:"upi_id,omitempty" binding:"omitempty,upi"`
}

type LoginRequestBody struct {
	FullName string `json:"full_name,omitempty"`
}

type OfferURIParams struct {
	OfferID string `uri:"id" binding:"required,uuid"`
}

type TransactionURIParams struct {
	TransactionID string `uri:"id" binding:"required,uuid"`
}

type SlideURIParams struct {
	SlideID string `uri:"id" binding:"required,uuid"`
}
