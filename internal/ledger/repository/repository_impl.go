package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/ledger/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) (*domain.OrderRecord, error) {
	var record domain.OrderRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, draft_amount, draft_updated_at,
		        last_submitted_amount, last_submitted_at, last_submitted_batch_id,
		        created_at, updated_at
		 FROM order_records WHERE customer_id = ? AND product_id = ?`,
		customerID,
		productID,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*domain.OrderRecord, error) {
	var records []*domain.OrderRecord
	err := db.WithContext(ctx).
		Model(&domain.OrderRecord{}).
		Where("customer_id = ?", customerID).
		Order("product_id asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) UpsertDraft(ctx context.Context, db *gorm.DB, record *domain.OrderRecord) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"draft_amount":     record.DraftAmount,
			"draft_updated_at": record.DraftUpdatedAt,
			"updated_at":       record.UpdatedAt,
		}),
	}).Create(record).Error
}

func (r *repo) UpsertSubmission(ctx context.Context, db *gorm.DB, record *domain.OrderRecord) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"draft_amount":            0,
			"draft_updated_at":        record.DraftUpdatedAt,
			"last_submitted_amount":   record.LastSubmittedAmount,
			"last_submitted_at":       record.LastSubmittedAt,
			"last_submitted_batch_id": record.LastSubmittedBatchID,
			"updated_at":              record.UpdatedAt,
		}),
	}).Create(record).Error
}

func (r *repo) ClearSubmission(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID, previousSubmittedAt, clearedAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE order_records
		 SET last_submitted_amount = 0,
		     last_submitted_at = NULL,
		     last_submitted_batch_id = NULL,
		     updated_at = ?
		 WHERE customer_id = ? AND product_id = ? AND last_submitted_at = ?`,
		clearedAt,
		customerID,
		productID,
		previousSubmittedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM order_records WHERE customer_id = ?`, customerID,
	).Error
}

func (r *repo) DeleteByProduct(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM order_records WHERE customer_id = ? AND product_id = ?`, customerID, productID,
	).Error
}

func (r *repo) DeleteOrphans(ctx context.Context, db *gorm.DB) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM order_records
		 WHERE customer_id NOT IN (SELECT id FROM customers)
		    OR product_id NOT IN (SELECT id FROM products)`,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
