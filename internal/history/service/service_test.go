package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/history/domain"
	"github.com/smallbiznis/orderdesk/internal/history/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE order_history (
		id BIGINT PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		batch_id BIGINT NOT NULL,
		order_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		submitted_at TIMESTAMP NOT NULL,
		sku VARCHAR(128) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL DEFAULT 0,
		unit VARCHAR(64) NOT NULL DEFAULT '',
		is_archived BOOLEAN NOT NULL DEFAULT FALSE,
		archived_at TIMESTAMP NULL
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

func appendBatch(t *testing.T, svc *Service, customerID snowflake.ID, batchID snowflake.ID, at time.Time, amounts map[snowflake.ID]float64) {
	t.Helper()
	for productID, amount := range amounts {
		_, err := svc.Append(context.Background(), domain.AppendRequest{
			CustomerID:  customerID,
			ProductID:   productID,
			BatchID:     batchID,
			Amount:      amount,
			SubmittedAt: at,
			Details:     domain.Details{SKU: "SKU-1", Name: "Widget", Price: 2.5, Unit: "box"},
		})
		require.NoError(t, err)
	}
}

func TestAppendValidation(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()

	_, err := svc.Append(ctx, domain.AppendRequest{
		CustomerID:  node.Generate(),
		ProductID:   node.Generate(),
		BatchID:     node.Generate(),
		Amount:      0,
		SubmittedAt: clk.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.Append(ctx, domain.AppendRequest{
		CustomerID:  node.Generate(),
		ProductID:   node.Generate(),
		BatchID:     node.Generate(),
		Amount:      -2,
		SubmittedAt: clk.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestListGroupsByBatch(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productA := node.Generate()
	productB := node.Generate()

	firstBatch := node.Generate()
	firstAt := clk.Now()
	appendBatch(t, svc, customerID, firstBatch, firstAt, map[snowflake.ID]float64{
		productA: 3, productB: 5,
	})

	clk.Advance(time.Hour)
	secondBatch := node.Generate()
	secondAt := clk.Now()
	appendBatch(t, svc, customerID, secondBatch, secondAt, map[snowflake.ID]float64{
		productA: 1,
	})

	batches, err := svc.ListForCustomer(ctx, customerID, 0)
	require.NoError(t, err)
	require.Len(t, batches, 2)

	// Newest first.
	assert.Equal(t, secondBatch, batches[0].BatchID)
	assert.Len(t, batches[0].Items, 1)
	assert.Equal(t, firstBatch, batches[1].BatchID)
	assert.Len(t, batches[1].Items, 2)
}

func TestMostRecentActiveBatch(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()

	ref, err := svc.MostRecentActiveBatch(ctx, customerID)
	require.NoError(t, err)
	assert.Nil(t, ref)

	firstBatch := node.Generate()
	firstAt := clk.Now()
	appendBatch(t, svc, customerID, firstBatch, firstAt, map[snowflake.ID]float64{productID: 2})

	clk.Advance(time.Hour)
	secondBatch := node.Generate()
	appendBatch(t, svc, customerID, secondBatch, clk.Now(), map[snowflake.ID]float64{productID: 4})

	ref, err = svc.MostRecentActiveBatch(ctx, customerID)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, secondBatch, ref.BatchID)

	// Archiving the newest batch promotes the previous one.
	_, err = svc.ArchiveBatch(ctx, customerID, ref.SubmittedAt)
	require.NoError(t, err)

	ref, err = svc.MostRecentActiveBatch(ctx, customerID)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, firstBatch, ref.BatchID)
}

func TestArchiveBatch(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productA := node.Generate()
	productB := node.Generate()

	batchID := node.Generate()
	submittedAt := clk.Now()
	appendBatch(t, svc, customerID, batchID, submittedAt, map[snowflake.ID]float64{
		productA: 3, productB: 5,
	})

	result, err := svc.ArchiveBatch(ctx, customerID, submittedAt)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ModifiedCount)
	assert.ElementsMatch(t, []snowflake.ID{productA, productB}, result.ProductIDs)

	// Second archive of the same batch finds nothing to flag.
	_, err = svc.ArchiveBatch(ctx, customerID, submittedAt)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Owner still sees the batch, flagged.
	batches, err := svc.ListForCustomer(ctx, customerID, 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].IsArchived)

	// The before-listing hides archived batches entirely.
	past, err := svc.ListBeforeBatch(ctx, customerID, submittedAt.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestListBeforeBatchExcludesNewer(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()

	firstAt := clk.Now()
	appendBatch(t, svc, customerID, node.Generate(), firstAt, map[snowflake.ID]float64{productID: 2})

	clk.Advance(time.Hour)
	secondAt := clk.Now()
	secondBatch := node.Generate()
	appendBatch(t, svc, customerID, secondBatch, secondAt, map[snowflake.ID]float64{productID: 4})

	past, err := svc.ListBeforeBatch(ctx, customerID, secondAt, 0)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.NotEqual(t, secondBatch, past[0].BatchID)
}

func TestPurgeOlderThan(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()

	// An old batch, archived long ago.
	oldAt := clk.Now()
	appendBatch(t, svc, customerID, node.Generate(), oldAt, map[snowflake.ID]float64{productID: 2})
	_, err := svc.ArchiveBatch(ctx, customerID, oldAt)
	require.NoError(t, err)

	// An equally old batch that was never archived.
	clk.Advance(time.Minute)
	activeAt := clk.Now()
	appendBatch(t, svc, customerID, node.Generate(), activeAt, map[snowflake.ID]float64{productID: 3})

	// A recently archived batch.
	clk.Advance(90 * 24 * time.Hour)
	recentAt := clk.Now()
	appendBatch(t, svc, customerID, node.Generate(), recentAt, map[snowflake.ID]float64{productID: 4})
	_, err = svc.ArchiveBatch(ctx, customerID, recentAt)
	require.NoError(t, err)

	deleted, err := svc.PurgeOlderThan(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// Active rows survive regardless of age; the fresh archive stays.
	batches, err := svc.ListForCustomer(ctx, customerID, 0)
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}
