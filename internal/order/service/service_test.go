package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/orderdesk/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/orderdesk/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/orderdesk/internal/catalog/service"
	"github.com/smallbiznis/orderdesk/internal/clock"
	historyrepo "github.com/smallbiznis/orderdesk/internal/history/repository"
	historyservice "github.com/smallbiznis/orderdesk/internal/history/service"
	ledgerdomain "github.com/smallbiznis/orderdesk/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/orderdesk/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/orderdesk/internal/ledger/service"
	"github.com/smallbiznis/orderdesk/internal/order/domain"
	"github.com/smallbiznis/orderdesk/internal/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	svc     *Service
	db      *gorm.DB
	clk     *clock.FakeClock
	node    *snowflake.Node
	catalog catalogdomain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range []string{
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			sku VARCHAR(128) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (customer_id, sku)
		)`,
		`CREATE TABLE order_records (
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
		)`,
		`CREATE TABLE order_history (
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
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Repo:        catalogrepo.Provide(),
		LedgerRepo:  ledgerrepo.Provide(),
		HistoryRepo: historyrepo.Provide(),
	})
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  ledgerrepo.Provide(),
	})
	historySvc := historyservice.New(historyservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  historyrepo.Provide(),
	})

	return &testEnv{
		svc: &Service{
			log:     log,
			genID:   node,
			clock:   clk,
			catalog: catalogSvc,
			ledger:  ledgerSvc,
			history: historySvc,
		},
		db:      db,
		clk:     clk,
		node:    node,
		catalog: catalogSvc,
	}
}

func (e *testEnv) customer() principal.Principal {
	return principal.Principal{ID: e.node.Generate(), Role: principal.RoleCustomer}
}

func (e *testEnv) admin() principal.Principal {
	return principal.Principal{ID: e.node.Generate(), Role: principal.RoleAdmin}
}

func (e *testEnv) seedProduct(t *testing.T, customerID snowflake.ID, sku string, price float64) catalogdomain.Product {
	t.Helper()
	product, err := e.catalog.CreateForCustomer(context.Background(), customerID, catalogdomain.ProductInput{
		SKU:   sku,
		Name:  "Product " + sku,
		Price: price,
		Unit:  "box",
	})
	require.NoError(t, err)
	return product
}

func TestSubmitAllSkipsZeroItemsAndFreezesDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()

	ordered := env.seedProduct(t, customer.ID, "SKU-A", 10)
	idle := env.seedProduct(t, customer.ID, "SKU-B", 20)

	result, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: ordered.ID, Amount: 5},
		{ProductID: idle.ID, Amount: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.SubmittedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.True(t, result.SubmittedAt.Equal(env.clk.Now()))

	// Editing the product afterwards must not rewrite the snapshot.
	_, err = env.catalog.UpdateForCustomer(ctx, customer.ID, ordered.ID, catalogdomain.ProductInput{
		SKU: "SKU-A", Name: "Renamed", Price: 99, Unit: "pallet",
	})
	require.NoError(t, err)

	batches, err := env.svc.CustomerHistory(ctx, customer, 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Items, 1)
	snapshot := batches[0].Items[0]
	assert.Equal(t, ordered.ID, snapshot.ProductID)
	assert.Equal(t, float64(5), snapshot.OrderAmount)
	assert.Equal(t, float64(10), snapshot.Details.Price)
	assert.Equal(t, "Product SKU-A", snapshot.Details.Name)
}

func TestSubmitAllUsesRequestAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()
	product := env.seedProduct(t, customer.ID, "SKU-A", 10)

	// A stored draft must not override what the submission asks for.
	_, err := env.svc.SaveDraft(ctx, customer, product.ID, 3)
	require.NoError(t, err)

	result, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: product.ID, Amount: 5},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, float64(5), result.Items[0].Amount)

	batches, err := env.svc.CustomerHistory(ctx, customer, 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Items, 1)
	assert.Equal(t, float64(5), batches[0].Items[0].OrderAmount)

	lines, err := env.svc.DraftView(ctx, customer)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(5), lines[0].LastSubmittedAmount)
	assert.Equal(t, float64(0), lines[0].DraftAmount)
}

func TestSubmitAllDistinctBatchIDsAtSameInstant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()
	product := env.seedProduct(t, customer.ID, "SKU-A", 10)

	first, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: product.ID, Amount: 3},
	})
	require.NoError(t, err)

	// The clock does not move; the batch id alone must tell the two
	// submissions apart.
	second, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: product.ID, Amount: 4},
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.BatchID, second.BatchID)
	assert.True(t, first.SubmittedAt.Equal(second.SubmittedAt))

	batches, err := env.svc.CustomerHistory(ctx, customer, 0)
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}

func TestSubmitAllPartialFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()

	healthy := env.seedProduct(t, customer.ID, "SKU-A", 10)
	doomed := env.seedProduct(t, customer.ID, "SKU-B", 20)

	// Orphan the second item by removing its product out from under it.
	require.NoError(t, env.db.Exec(`DELETE FROM products WHERE id = ?`, doomed.ID).Error)

	result, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: healthy.ID, Amount: 2},
		{ProductID: doomed.ID, Amount: 3},
	})
	var partial *domain.PartialBatchError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Failed)
	assert.Equal(t, 2, partial.Total)

	assert.Equal(t, 1, result.SubmittedCount)
	assert.Equal(t, 1, result.FailedCount)
	for _, item := range result.Items {
		if item.ProductID == doomed.ID {
			assert.Equal(t, domain.OutcomeFailed, item.Outcome)
			assert.ErrorIs(t, item.Err, domain.ErrNotFound)
		} else {
			assert.Equal(t, domain.OutcomeSubmitted, item.Outcome)
		}
	}

	// The healthy line landed despite its neighbor failing.
	batches, err := env.svc.CustomerHistory(ctx, customer, 0)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Items, 1)
	assert.Equal(t, healthy.ID, batches[0].Items[0].ProductID)
}

func TestAdminHistoryExcludesLatestAndArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()
	admin := env.admin()
	product := env.seedProduct(t, customer.ID, "SKU-A", 10)

	submit := func(amount float64) domain.SubmitResult {
		result, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
			{ProductID: product.ID, Amount: amount},
		})
		require.NoError(t, err)
		env.clk.Advance(time.Hour)
		return result
	}

	first := submit(1)
	second := submit(2)
	submit(3)

	// Archive the middle batch; the past view must now show only the
	// oldest one. The newest stays out as the current active batch.
	_, err := env.svc.ArchiveOrder(ctx, admin, customer.ID, second.SubmittedAt)
	require.NoError(t, err)

	past, err := env.svc.AdminHistory(ctx, admin, customer.ID, 0)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, first.BatchID, past[0].BatchID)

	// The owner still sees all three, with the archived one flagged.
	own, err := env.svc.CustomerHistory(ctx, customer, 0)
	require.NoError(t, err)
	require.Len(t, own, 3)
	for _, batch := range own {
		assert.Equal(t, batch.BatchID == second.BatchID, batch.IsArchived)
	}
}

func TestAdminHistoryEmptyCustomer(t *testing.T) {
	env := newTestEnv(t)

	past, err := env.svc.AdminHistory(context.Background(), env.admin(), env.node.Generate(), 0)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestArchiveOrderSupersededSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()
	admin := env.admin()
	product := env.seedProduct(t, customer.ID, "SKU-A", 10)

	first, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: product.ID, Amount: 4},
	})
	require.NoError(t, err)

	env.clk.Advance(time.Hour)
	second, err := env.svc.SubmitAll(ctx, customer, []ledgerdomain.DraftItem{
		{ProductID: product.ID, Amount: 6},
	})
	require.NoError(t, err)

	// Archiving the superseded batch flags its history but must leave
	// the ledger's newer submission alone.
	result, err := env.svc.ArchiveOrder(ctx, admin, customer.ID, first.SubmittedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ModifiedCount)
	require.Len(t, result.Items, 1)
	assert.False(t, result.Items[0].Cleared)

	lines, err := env.svc.DraftView(ctx, customer)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(6), lines[0].LastSubmittedAmount)

	// Archiving the current batch does clear the ledger.
	result, err = env.svc.ArchiveOrder(ctx, admin, customer.ID, second.SubmittedAt)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].Cleared)

	lines, err = env.svc.DraftView(ctx, customer)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, float64(0), lines[0].LastSubmittedAmount)
	assert.Nil(t, lines[0].LastSubmittedAt)
}

func TestArchiveOrderUnknownBatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ArchiveOrder(context.Background(), env.admin(), env.node.Generate(), env.clk.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRoleChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := env.customer()
	admin := env.admin()

	_, err := env.svc.AdminHistory(ctx, customer, customer.ID, 0)
	assert.ErrorIs(t, err, principal.ErrAccessDenied)

	_, err = env.svc.ArchiveOrder(ctx, customer, customer.ID, env.clk.Now())
	assert.ErrorIs(t, err, principal.ErrAccessDenied)

	_, err = env.svc.SubmitAll(ctx, admin, nil)
	assert.ErrorIs(t, err, principal.ErrAccessDenied)

	_, err = env.svc.DraftView(ctx, principal.Principal{})
	assert.ErrorIs(t, err, principal.ErrAccessDenied)
}
