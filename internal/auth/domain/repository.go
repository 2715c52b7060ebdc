package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateAdmin(ctx context.Context, db *gorm.DB, admin *Admin) error
	GetAdmin(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Admin, error)
	GetAdminByUsername(ctx context.Context, db *gorm.DB, username string) (*Admin, error)
	UpdateAdminPassword(ctx context.Context, db *gorm.DB, id snowflake.ID, passwordHash string) error

	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	GetSession(ctx context.Context, db *gorm.DB, token string) (*Session, error)
	DeleteSession(ctx context.Context, db *gorm.DB, token string) error
	DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
