package models

import (
	"log"
	"rewards/src/lib"
	"rewards/src/types"
	"time"

	"github.com/google/uuid"
)

// Transaction is one user's attempt at completing one offer, tracked
// through the admin review workflow. Offer fields are denormalized onto the
// row so history survives offer edits and deletes.
type Transaction struct {
	ID         uuid.UUID               `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID     string                  `gorm:"index" json:"user_id"`
	OfferID    *uuid.UUID              `gorm:"type:uuid;index" json:"offer_id,omitempty"`
	OfferTitle string                  `json:"offer_title,omitempty"`
	OfferIcon  *string                 `json:"offer_icon,omitempty"`
	Amount     *float64                `json:"amount,omitempty"`
	Status     types.TransactionStatus `gorm:"default:'pending'" json:"status"`
	ProofURL   *string                 `json:"proof_url,omitempty"`
	Notes      *string                 `json:"notes,omitempty"`
	ReviewedBy *string                 `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time              `json:"reviewed_at,omitempty"`

	Profile Profile `gorm:"foreignKey:user_id" json:"-"`

	types.Timestamps
}

const TransactionsReviewedTopic = "transactions-reviewed"

func TransactionReviewedProducer(id uuid.UUID, payload map[string]any) error {
	err := lib.KafkaProduceMessage("transactions_reviewed_producer", TransactionsReviewedTopic, payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}
