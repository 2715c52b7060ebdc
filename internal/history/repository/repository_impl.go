package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/history/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snapshot *domain.Snapshot) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO order_history (
			id, customer_id, product_id, batch_id, order_amount, submitted_at,
			sku, name, price, unit, is_archived, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.CustomerID,
		snapshot.ProductID,
		snapshot.BatchID,
		snapshot.OrderAmount,
		snapshot.SubmittedAt,
		snapshot.Details.SKU,
		snapshot.Details.Name,
		snapshot.Details.Price,
		snapshot.Details.Unit,
		snapshot.IsArchived,
		snapshot.ArchivedAt,
	).Error
}

func (r *repo) MostRecentActiveBatch(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.BatchRef, error) {
	var row struct {
		BatchID     snowflake.ID
		SubmittedAt time.Time
	}
	err := db.WithContext(ctx).Raw(
		`SELECT batch_id, submitted_at
		 FROM order_history
		 WHERE customer_id = ? AND order_amount > 0 AND is_archived = ?
		 ORDER BY submitted_at DESC, batch_id DESC
		 LIMIT 1`,
		customerID,
		false,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.BatchID == 0 {
		return nil, nil
	}
	return &domain.BatchRef{BatchID: row.BatchID, SubmittedAt: row.SubmittedAt}, nil
}

func (r *repo) ListBefore(ctx context.Context, db *gorm.DB, customerID snowflake.ID, before time.Time, limit int) ([]*domain.Snapshot, error) {
	var snapshots []*domain.Snapshot
	stmt := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Where("customer_id = ?", customerID).
		Where("order_amount > 0").
		Where("is_archived = ?", false).
		Where("submitted_at < ?", before).
		Order("submitted_at desc, batch_id desc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, limit int) ([]*domain.Snapshot, error) {
	var snapshots []*domain.Snapshot
	stmt := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Where("customer_id = ?", customerID).
		Where("order_amount > 0").
		Order("submitted_at desc, batch_id desc, id asc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) MarkArchived(ctx context.Context, db *gorm.DB, customerID snowflake.ID, submittedAt time.Time, archivedAt time.Time) ([]*domain.Snapshot, error) {
	var snapshots []*domain.Snapshot
	err := db.WithContext(ctx).
		Model(&domain.Snapshot{}).
		Where("customer_id = ?", customerID).
		Where("submitted_at = ?", submittedAt).
		Where("is_archived = ?", false).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	err = db.WithContext(ctx).Exec(
		`UPDATE order_history
		 SET is_archived = ?, archived_at = ?
		 WHERE customer_id = ? AND submitted_at = ? AND is_archived = ?`,
		true,
		archivedAt,
		customerID,
		submittedAt,
		false,
	).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repo) DeleteArchivedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM order_history WHERE is_archived = ? AND archived_at < ?`,
		true,
		cutoff,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM order_history WHERE customer_id = ?`, customerID,
	).Error
}

func (r *repo) DeleteByProduct(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM order_history WHERE customer_id = ? AND product_id = ?`, customerID, productID,
	).Error
}

func (r *repo) DeleteOrphans(ctx context.Context, db *gorm.DB) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM order_history
		 WHERE customer_id NOT IN (SELECT id FROM customers)
		    OR product_id NOT IN (SELECT id FROM products)`,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
