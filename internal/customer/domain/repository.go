package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, customer *Customer) error
	Get(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	GetByUsername(ctx context.Context, db *gorm.DB, username string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB) ([]*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
