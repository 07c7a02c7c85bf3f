package models

import (
	"rewards/src/types"

	"github.com/google/uuid"
)

// Offer is a promoted task (usually "install and use an app") with a cash
// reward. Only admins mutate offers; everyone else reads them filtered to
// Active.
type Offer struct {
	ID            uuid.UUID        `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title         string           `json:"title"`
	Slug          string           `gorm:"index" json:"slug,omitempty"`
	Amount        float64          `json:"amount"`
	Icon          *string          `json:"icon,omitempty"`
	Label         *string          `json:"label,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Steps         types.StringList `gorm:"type:jsonb" json:"steps,omitempty"`
	StoreURL      *string          `json:"store_url,omitempty"`
	Active        bool             `gorm:"default:true" json:"active"`
	RequiresProof bool             `gorm:"default:false" json:"requires_proof"`

	types.Timestamps
}

// Slide is a carousel/banner entry on the home screen. Same admin-only
// mutation pattern as Offer, no status field.
type Slide struct {
	ID    uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Image string    `json:"image"`
	Link  *string   `json:"link,omitempty"`

	types.Timestamps
}
