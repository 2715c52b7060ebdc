package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/ledger/domain"
	"github.com/smallbiznis/orderdesk/internal/ledger/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE order_records (
		id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		draft_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		draft_updated_at TIMESTAMP NULL,
		last_submitted_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_submitted_at TIMESTAMP NULL,
		last_submitted_batch_id BIGINT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (customer_id, product_id)
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clk,
		repo:  repository.Provide(),
	}
	return svc, clk, node
}

func TestSaveDraftLastWriteWins(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()

	_, err := svc.SaveDraft(ctx, customerID, productID, 5)
	require.NoError(t, err)

	clk.Advance(time.Minute)
	_, err = svc.SaveDraft(ctx, customerID, productID, 12)
	require.NoError(t, err)

	record, err := svc.Get(ctx, customerID, productID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, float64(12), record.DraftAmount)

	records, err := svc.ListForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSaveDraftValidation(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()

	_, err := svc.SaveDraft(ctx, customerID, productID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.SaveDraft(ctx, customerID, 0, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	// Zero is a valid draft amount; it means "nothing to order".
	_, err = svc.SaveDraft(ctx, customerID, productID, 0)
	assert.NoError(t, err)
}

func TestSaveDraftBatchSharedTimestamp(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productA := node.Generate()
	productB := node.Generate()

	result, err := svc.SaveDraftBatch(ctx, customerID, []domain.DraftItem{
		{ProductID: productA, Amount: 3},
		{ProductID: 0, Amount: 4},
		{ProductID: productB, Amount: 7},
	})

	// The failed item surfaces as a partial batch error; the result
	// still reports every item.
	var partial *domain.PartialBatchError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Failed)
	assert.Equal(t, 3, partial.Total)

	assert.True(t, result.UpdatedAt.Equal(clk.Now()))
	require.Len(t, result.Items, 3)

	assert.NoError(t, result.Items[0].Err)
	assert.ErrorIs(t, result.Items[1].Err, domain.ErrInvalidProduct)
	assert.NoError(t, result.Items[2].Err)

	// Items around the failed one stay persisted.
	recordA, err := svc.Get(ctx, customerID, productA)
	require.NoError(t, err)
	require.NotNil(t, recordA)
	assert.Equal(t, float64(3), recordA.DraftAmount)
	assert.True(t, recordA.DraftUpdatedAt.Equal(result.UpdatedAt))

	recordB, err := svc.Get(ctx, customerID, productB)
	require.NoError(t, err)
	require.NotNil(t, recordB)
	assert.True(t, recordB.DraftUpdatedAt.Equal(result.UpdatedAt))
}

func TestRecordSubmissionConsumesDraft(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()
	batchID := node.Generate()

	_, err := svc.SaveDraft(ctx, customerID, productID, 9)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	submittedAt := clk.Now()
	require.NoError(t, svc.RecordSubmission(ctx, customerID, productID, 9, batchID, submittedAt))

	record, err := svc.Get(ctx, customerID, productID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, float64(0), record.DraftAmount)
	assert.Equal(t, float64(9), record.LastSubmittedAmount)
	require.NotNil(t, record.LastSubmittedAt)
	assert.True(t, record.LastSubmittedAt.Equal(submittedAt))
	require.NotNil(t, record.LastSubmittedBatchID)
	assert.Equal(t, batchID, *record.LastSubmittedBatchID)
}

func TestClearSubmissionGuard(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()

	firstAt := clk.Now()
	require.NoError(t, svc.RecordSubmission(ctx, customerID, productID, 4, node.Generate(), firstAt))

	clk.Advance(time.Hour)
	secondAt := clk.Now()
	require.NoError(t, svc.RecordSubmission(ctx, customerID, productID, 6, node.Generate(), secondAt))

	// Clearing with the superseded timestamp must not touch the row.
	cleared, err := svc.ClearSubmission(ctx, customerID, productID, firstAt)
	require.NoError(t, err)
	assert.False(t, cleared)

	record, err := svc.Get(ctx, customerID, productID)
	require.NoError(t, err)
	assert.Equal(t, float64(6), record.LastSubmittedAmount)

	clk.Advance(time.Minute)
	cleared, err = svc.ClearSubmission(ctx, customerID, productID, secondAt)
	require.NoError(t, err)
	assert.True(t, cleared)

	record, err = svc.Get(ctx, customerID, productID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), record.LastSubmittedAmount)
	assert.Nil(t, record.LastSubmittedAt)
	assert.Nil(t, record.LastSubmittedBatchID)
	// The clear stamps updated_at from the injected clock.
	assert.True(t, record.UpdatedAt.Equal(clk.Now()))
}
