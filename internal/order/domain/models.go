package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
)

// DraftLine is one row of the customer's ordering sheet: the catalog
// product joined with the pair's ledger state.
type DraftLine struct {
	Product catalogdomain.Product `json:"product"`

	DraftAmount    float64    `json:"draft_amount"`
	DraftUpdatedAt *time.Time `json:"draft_updated_at,omitempty"`

	LastSubmittedAmount float64    `json:"last_submitted_amount"`
	LastSubmittedAt     *time.Time `json:"last_submitted_at,omitempty"`
}

// SubmitOutcome classifies one line of a submission.
type SubmitOutcome string

const (
	OutcomeSubmitted SubmitOutcome = "submitted"
	OutcomeSkipped   SubmitOutcome = "skipped"
	OutcomeFailed    SubmitOutcome = "failed"
)

type SubmitItemResult struct {
	ProductID snowflake.ID  `json:"product_id"`
	Amount    float64       `json:"amount"`
	Outcome   SubmitOutcome `json:"outcome"`
	Err       error         `json:"-"`
}

// SubmitResult reports a whole submission. Submission is best-effort
// per line: lines already written stay written when a later line
// fails, and the report says exactly which lines landed.
type SubmitResult struct {
	BatchID     snowflake.ID       `json:"batch_id"`
	SubmittedAt time.Time          `json:"submitted_at"`
	Items       []SubmitItemResult `json:"items"`

	SubmittedCount int `json:"submitted_count"`
	SkippedCount   int `json:"skipped_count"`
	FailedCount    int `json:"failed_count"`
}

type ArchiveItemResult struct {
	ProductID snowflake.ID `json:"product_id"`

	// Cleared is false when a fresher submission superseded the
	// archived batch for this product; the ledger is left alone then.
	Cleared bool  `json:"cleared"`
	Err     error `json:"-"`
}

// ArchiveOrderResult reports an archive action: how many history rows
// were flagged and what happened to each product's ledger entry.
type ArchiveOrderResult struct {
	ModifiedCount int                 `json:"modified_count"`
	Items         []ArchiveItemResult `json:"items"`
}
