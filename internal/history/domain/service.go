package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// AppendRequest describes one snapshot to record at submit time.
type AppendRequest struct {
	CustomerID  snowflake.ID
	ProductID   snowflake.ID
	BatchID     snowflake.ID
	Amount      float64
	SubmittedAt time.Time
	Details     Details
}

// ArchiveResult reports an archive marking: how many rows changed and
// which products they cover (the coordinator clears the matching
// ledger submissions from this list).
type ArchiveResult struct {
	ModifiedCount int
	ProductIDs    []snowflake.ID
}

type Service interface {
	// Append records one immutable snapshot. Amounts must be positive;
	// callers filter zero-quantity lines before calling.
	Append(ctx context.Context, req AppendRequest) (Snapshot, error)

	// MostRecentActiveBatch returns the customer's latest non-archived
	// batch, or nil when the customer has none.
	MostRecentActiveBatch(ctx context.Context, customerID snowflake.ID) (*BatchRef, error)

	// ListBeforeBatch returns non-archived batches strictly older than
	// beforeTimestamp, newest first. Backs the admin "past history"
	// view, which hides archived batches entirely.
	ListBeforeBatch(ctx context.Context, customerID snowflake.ID, beforeTimestamp time.Time, limit int) ([]Batch, error)

	// ListForCustomer returns every batch, active and archived, each
	// flagged. Archiving is an admin organizational action, not a
	// customer-visible deletion, so the owner still sees archived rows.
	ListForCustomer(ctx context.Context, customerID snowflake.ID, limit int) ([]Batch, error)

	// ArchiveBatch marks every row of the (customer, submittedAt) batch
	// archived.
	ArchiveBatch(ctx context.Context, customerID snowflake.ID, submittedAt time.Time) (ArchiveResult, error)

	// PurgeOlderThan permanently deletes rows archived more than
	// ageDays ago.
	PurgeOlderThan(ctx context.Context, ageDays int) (int64, error)

	// DeleteOrphans removes rows referencing customers or products that
	// no longer exist.
	DeleteOrphans(ctx context.Context) (int64, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrNotFound      = errors.New("not_found")
)
