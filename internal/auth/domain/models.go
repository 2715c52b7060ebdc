package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/principal"
)

// Admin is a portal staff account.
type Admin struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex:ux_admins_username" json:"username"`
	PasswordHash string       `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Admin) TableName() string { return "admins" }

// Session is an opaque-token server-side session. The token is the
// cookie value; nothing user-derived is stored client-side.
type Session struct {
	Token       string         `gorm:"primaryKey" json:"-"`
	PrincipalID snowflake.ID   `gorm:"not null;index:ix_sessions_principal" json:"principal_id"`
	Role        principal.Role `gorm:"not null" json:"role"`
	ExpiresAt   time.Time      `gorm:"not null;index:ix_sessions_expires" json:"expires_at"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Session) TableName() string { return "sessions" }
