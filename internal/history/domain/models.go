package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Details is the product snapshot frozen at submit time. It is never
// re-read from the live catalog.
type Details struct {
	SKU   string  `gorm:"column:sku;not null" json:"sku"`
	Name  string  `gorm:"column:name;not null" json:"name"`
	Price float64 `gorm:"column:price;not null" json:"price"`
	Unit  string  `gorm:"column:unit;not null" json:"unit"`
}

// Snapshot is one submitted line item. Immutable after creation except
// for the archive flag pair. Rows sharing a BatchID (and SubmittedAt)
// form one submission batch.
type Snapshot struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	ProductID  snowflake.ID `gorm:"not null" json:"product_id"`
	BatchID    snowflake.ID `gorm:"not null;index" json:"batch_id"`

	OrderAmount float64   `gorm:"not null" json:"order_amount"`
	SubmittedAt time.Time `gorm:"not null;index" json:"submitted_at"`

	Details Details `gorm:"embedded" json:"product_details"`

	IsArchived bool       `gorm:"not null;default:false" json:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

func (Snapshot) TableName() string { return "order_history" }

// Batch groups the snapshots submitted together.
type Batch struct {
	BatchID     snowflake.ID `json:"batch_id"`
	SubmittedAt time.Time    `json:"submitted_at"`
	IsArchived  bool         `json:"is_archived"`
	Items       []Snapshot   `json:"items"`
}

// BatchRef identifies one batch without its items.
type BatchRef struct {
	BatchID     snowflake.ID
	SubmittedAt time.Time
}
