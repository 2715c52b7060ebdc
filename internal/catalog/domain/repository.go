package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	CreateMaster(ctx context.Context, db *gorm.DB, product *MasterProduct) error
	GetMaster(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MasterProduct, error)
	ListMaster(ctx context.Context, db *gorm.DB) ([]*MasterProduct, error)
	UpdateMaster(ctx context.Context, db *gorm.DB, product *MasterProduct) error
	DeleteMaster(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	Create(ctx context.Context, db *gorm.DB, product *Product) error
	Get(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) (*Product, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) error
	DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error
}
