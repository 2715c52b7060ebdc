package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) (*OrderRecord, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]*OrderRecord, error)

	// UpsertDraft writes the draft side of the pair's record, creating
	// the record when missing. Last write wins.
	UpsertDraft(ctx context.Context, db *gorm.DB, record *OrderRecord) error

	// UpsertSubmission writes the submitted side and consumes the draft
	// (draft_amount back to 0, draft_updated_at = submission time).
	UpsertSubmission(ctx context.Context, db *gorm.DB, record *OrderRecord) error

	// ClearSubmission zeroes the submitted side only when
	// last_submitted_at still equals previousSubmittedAt, stamping
	// updated_at with clearedAt. Returns whether a row was cleared.
	ClearSubmission(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID, previousSubmittedAt, clearedAt time.Time) (bool, error)

	DeleteByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) error
	DeleteByProduct(ctx context.Context, db *gorm.DB, customerID, productID snowflake.ID) error

	// DeleteOrphans removes records whose customer or product row no
	// longer exists. Used by the sweep reconciliation job.
	DeleteOrphans(ctx context.Context, db *gorm.DB) (int64, error)
}
