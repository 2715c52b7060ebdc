package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DraftItem is one line of a draft batch write.
type DraftItem struct {
	ProductID snowflake.ID
	Amount    float64
}

// DraftItemResult reports the outcome of one item in a draft batch.
// Batch writes are best-effort: earlier items stay persisted when a
// later one fails.
type DraftItemResult struct {
	ProductID snowflake.ID
	Err       error
}

// SaveDraftBatchResult carries the shared timestamp applied to every
// item that succeeded, plus the per-item outcomes.
type SaveDraftBatchResult struct {
	UpdatedAt time.Time
	Items     []DraftItemResult
}

type Service interface {
	// SaveDraft upserts the pair's record with the new draft amount.
	// Idempotent; repeated calls with the same amount converge.
	SaveDraft(ctx context.Context, customerID, productID snowflake.ID, amount float64) (OrderRecord, error)

	// SaveDraftBatch applies SaveDraft per item under one shared
	// timestamp. Not atomic across items; when any item fails the
	// result still carries every outcome and the error is a
	// *PartialBatchError.
	SaveDraftBatch(ctx context.Context, customerID snowflake.ID, items []DraftItem) (SaveDraftBatchResult, error)

	// RecordSubmission stamps the submitted side and consumes the draft.
	RecordSubmission(ctx context.Context, customerID, productID snowflake.ID, amount float64, batchID snowflake.ID, submittedAt time.Time) error

	// ClearSubmission is the archive-side guard: it only clears the
	// submitted fields while they still match previousSubmittedAt, so
	// archiving a stale batch never erases a fresher submission.
	ClearSubmission(ctx context.Context, customerID, productID snowflake.ID, previousSubmittedAt time.Time) (bool, error)

	Get(ctx context.Context, customerID, productID snowflake.ID) (*OrderRecord, error)
	ListForCustomer(ctx context.Context, customerID snowflake.ID) ([]*OrderRecord, error)

	// DeleteOrphans removes records left behind by customer or product
	// deletions. Sweep hook.
	DeleteOrphans(ctx context.Context) (int64, error)
}

var (
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidProduct = errors.New("invalid_product")
	ErrNotFound       = errors.New("not_found")
)

// PartialBatchError reports that some items of a best-effort batch
// write failed while the rest were persisted. The per-item errors live
// in the accompanying result value.
type PartialBatchError struct {
	Failed int
	Total  int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("partial_batch_failure: %d of %d items failed", e.Failed, e.Total)
}
