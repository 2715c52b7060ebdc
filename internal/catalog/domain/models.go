package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MasterProduct is the admin-managed template. Assigning one to a
// customer copies its fields into a Product row; later template edits
// do not propagate.
type MasterProduct struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	SKU   string       `gorm:"not null;uniqueIndex:ux_master_products_sku" json:"sku"`
	Name  string       `gorm:"not null" json:"name"`
	Price float64      `gorm:"not null;default:0" json:"price"`
	Unit  string       `gorm:"not null;default:''" json:"unit"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MasterProduct) TableName() string { return "master_products" }

// Product is a customer's orderable catalog entry. Submissions copy
// its fields into history, so edits here never rewrite past batches.
type Product struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;uniqueIndex:ux_products_customer_sku,priority:1" json:"customer_id"`
	SKU        string       `gorm:"not null;uniqueIndex:ux_products_customer_sku,priority:2" json:"sku"`
	Name       string       `gorm:"not null" json:"name"`
	Price      float64      `gorm:"not null;default:0" json:"price"`
	Unit       string       `gorm:"not null;default:''" json:"unit"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
