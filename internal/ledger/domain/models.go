package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// OrderRecord is the per (customer, product) ledger row. It carries
// both the mutable draft side and the last-submitted side; a submit
// consumes the draft. At most one record exists per pair.
type OrderRecord struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;uniqueIndex:ux_order_records_pair,priority:1" json:"customer_id"`
	ProductID  snowflake.ID `gorm:"not null;uniqueIndex:ux_order_records_pair,priority:2" json:"product_id"`

	DraftAmount    float64    `gorm:"not null;default:0" json:"draft_amount"`
	DraftUpdatedAt *time.Time `json:"draft_updated_at,omitempty"`

	LastSubmittedAmount  float64       `gorm:"not null;default:0" json:"last_submitted_amount"`
	LastSubmittedAt      *time.Time    `json:"last_submitted_at,omitempty"`
	LastSubmittedBatchID *snowflake.ID `json:"last_submitted_batch_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (OrderRecord) TableName() string { return "order_records" }
