package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateMaster(ctx context.Context, db *gorm.DB, product *domain.MasterProduct) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO master_products (id, sku, name, price, unit)
		 VALUES (?, ?, ?, ?, ?)`,
		product.ID,
		product.SKU,
		product.Name,
		product.Price,
		product.Unit,
	).Error
}

func (r *repo) GetMaster(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MasterProduct, error) {
	var product domain.MasterProduct
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM master_products WHERE id = ?`, id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) ListMaster(ctx context.Context, db *gorm.DB) ([]*domain.MasterProduct, error) {
	var products []*domain.MasterProduct
	err := db.WithContext(ctx).
		Model(&domain.MasterProduct{}).
		Order("sku asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) UpdateMaster(ctx context.Context, db *gorm.DB, product *domain.MasterProduct) error {
	return db.WithContext(ctx).Exec(
		`UPDATE master_products
		 SET sku = ?, name = ?, price = ?, unit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		product.SKU,
		product.Name,
		product.Price,
		product.Unit,
		product.ID,
	).Error
}

func (r *repo) DeleteMaster(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM master_products WHERE id = ?`, id,
	).Error
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, customer_id, sku, name, price, unit)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.CustomerID,
		product.SKU,
		product.Name,
		product.Price,
		product.Unit,
	).Error
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM products WHERE customer_id = ? AND id = ?`,
		customerID,
		productID,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.Product, error) {
	var products []*domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("customer_id = ?", customerID).
		Order("sku asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET sku = ?, name = ?, price = ?, unit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND customer_id = ?`,
		product.SKU,
		product.Name,
		product.Price,
		product.Unit,
		product.ID,
		product.CustomerID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE customer_id = ? AND id = ?`,
		customerID,
		productID,
	).Error
}

func (r *repo) DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM products WHERE customer_id = ?`, customerID,
	).Error
}
