package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is a portal account for one buying organization. Usernames
// are stored lowercase and compared case-insensitively at login.
type Customer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex:ux_customers_username" json:"username"`
	Name         string       `gorm:"not null" json:"name"`
	PasswordHash string       `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
