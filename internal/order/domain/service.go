package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
	ledgerdomain "github.com/smallbiznis/orderdesk/internal/ledger/domain"
	"github.com/smallbiznis/orderdesk/internal/principal"
)

// Service coordinates the order lifecycle across catalog, ledger and
// history. Every operation checks the caller's role once at entry;
// the layers underneath trust their inputs.
type Service interface {
	// SaveDraft stores one draft amount for the calling customer.
	SaveDraft(ctx context.Context, p principal.Principal, productID snowflake.ID, amount float64) (ledgerdomain.OrderRecord, error)

	// SaveDraftBatch stores several draft amounts under one shared
	// timestamp. Best-effort across items.
	SaveDraftBatch(ctx context.Context, p principal.Principal, items []ledgerdomain.DraftItem) (ledgerdomain.SaveDraftBatchResult, error)

	// SubmitAll turns the submitted items into immutable history
	// snapshots under a fresh batch id, then stamps the ledger. Items
	// with amount <= 0 are skipped untouched.
	SubmitAll(ctx context.Context, p principal.Principal, items []ledgerdomain.DraftItem) (SubmitResult, error)

	// DraftView returns the customer's ordering sheet.
	DraftView(ctx context.Context, p principal.Principal) ([]DraftLine, error)

	// CustomerHistory returns the caller's own batches, archived ones
	// included and flagged.
	CustomerHistory(ctx context.Context, p principal.Principal, limit int) ([]historydomain.Batch, error)

	// AdminHistory returns a customer's past batches for back-office
	// review: the most recent active batch and all archived batches
	// are excluded.
	AdminHistory(ctx context.Context, p principal.Principal, customerID snowflake.ID, limit int) ([]historydomain.Batch, error)

	// ArchiveOrder flags the (customer, submittedAt) batch archived and
	// clears the matching ledger submissions, unless a fresher
	// submission already superseded them.
	ArchiveOrder(ctx context.Context, p principal.Principal, customerID snowflake.ID, submittedAt time.Time) (ArchiveOrderResult, error)
}
