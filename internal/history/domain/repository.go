package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error

	// MostRecentActiveBatch returns the latest batch among non-archived
	// positive-amount rows for a customer, or nil when none exists.
	MostRecentActiveBatch(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*BatchRef, error)

	// ListBefore returns non-archived rows submitted strictly before
	// the given timestamp, newest first.
	ListBefore(ctx context.Context, db *gorm.DB, customerID snowflake.ID, before time.Time, limit int) ([]*Snapshot, error)

	// ListByCustomer returns all positive-amount rows, active and
	// archived, newest first.
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID, limit int) ([]*Snapshot, error)

	// MarkArchived flags every row of the (customer, submittedAt) batch
	// and reports the rows touched.
	MarkArchived(ctx context.Context, db *gorm.DB, customerID snowflake.ID, submittedAt time.Time, archivedAt time.Time) ([]*Snapshot, error)

	// DeleteArchivedBefore removes archived rows whose archived_at is
	// older than the cutoff. Active rows are never touched.
	DeleteArchivedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)

	DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error
	DeleteByProduct(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) error
	DeleteOrphans(ctx context.Context, db *gorm.DB) (int64, error)
}
