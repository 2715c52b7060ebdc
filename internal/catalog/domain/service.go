package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// AssignItemResult reports one master product of a bulk assignment.
type AssignItemResult struct {
	MasterProductID snowflake.ID
	ProductID       snowflake.ID
	Err             error
}

// AssignResult is the per-item report of a bulk assignment. Assignment
// is best-effort: items already copied stay when a later one fails.
type AssignResult struct {
	Items []AssignItemResult
}

type MasterProductInput struct {
	SKU   string
	Name  string
	Price float64
	Unit  string
}

type ProductInput struct {
	SKU   string
	Name  string
	Price float64
	Unit  string
}

type Service interface {
	CreateMaster(ctx context.Context, in MasterProductInput) (MasterProduct, error)
	GetMaster(ctx context.Context, id snowflake.ID) (*MasterProduct, error)
	ListMaster(ctx context.Context) ([]*MasterProduct, error)
	UpdateMaster(ctx context.Context, id snowflake.ID, in MasterProductInput) (MasterProduct, error)
	DeleteMaster(ctx context.Context, id snowflake.ID) error

	// Assign copies the given master products into the customer's
	// catalog, one Product row each.
	Assign(ctx context.Context, customerID snowflake.ID, masterProductIDs []snowflake.ID) (AssignResult, error)

	CreateForCustomer(ctx context.Context, customerID snowflake.ID, in ProductInput) (Product, error)
	GetProduct(ctx context.Context, customerID, productID snowflake.ID) (*Product, error)
	ListForCustomer(ctx context.Context, customerID snowflake.ID) ([]*Product, error)
	UpdateForCustomer(ctx context.Context, customerID, productID snowflake.ID, in ProductInput) (Product, error)

	// RemoveFromCustomer deletes the product together with its ledger
	// row and history snapshots.
	RemoveFromCustomer(ctx context.Context, customerID, productID snowflake.ID) error
}

var (
	ErrNotFound   = errors.New("not_found")
	ErrConflict   = errors.New("conflict")
	ErrInvalidSKU = errors.New("invalid_sku")
)
