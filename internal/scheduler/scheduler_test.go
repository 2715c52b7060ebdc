package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authrepo "github.com/smallbiznis/orderdesk/internal/auth/repository"
	authservice "github.com/smallbiznis/orderdesk/internal/auth/service"
	"github.com/smallbiznis/orderdesk/internal/clock"
	customerrepo "github.com/smallbiznis/orderdesk/internal/customer/repository"
	historydomain "github.com/smallbiznis/orderdesk/internal/history/domain"
	historyrepo "github.com/smallbiznis/orderdesk/internal/history/repository"
	historyservice "github.com/smallbiznis/orderdesk/internal/history/service"
	ledgerrepo "github.com/smallbiznis/orderdesk/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/orderdesk/internal/ledger/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestScheduler(t *testing.T) (*Scheduler, *gorm.DB, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range []string{
		`CREATE TABLE customers (
			id BIGINT PRIMARY KEY,
			username VARCHAR(128) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE products (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			sku VARCHAR(128) NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT '',
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
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
		`CREATE TABLE sessions (
			token VARCHAR(64) PRIMARY KEY,
			principal_id BIGINT NOT NULL,
			role VARCHAR(16) NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)

	historySvc := historyservice.New(historyservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  historyrepo.Provide(),
	})
	ledgerSvc := ledgerservice.New(ledgerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  ledgerrepo.Provide(),
	})
	authSvc := authservice.New(authservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Clock:        clk,
		Repo:         authrepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
	})

	sched, err := New(Params{
		Log:        log,
		Clock:      clk,
		HistorySvc: historySvc,
		LedgerSvc:  ledgerSvc,
		AuthSvc:    authSvc,
		Config:     Config{RetentionDays: 60},
	})
	require.NoError(t, err)
	return sched, db, clk, node
}

func seedSnapshot(t *testing.T, db *gorm.DB, node *snowflake.Node, customerID, productID snowflake.ID, submittedAt time.Time, archivedAt *time.Time) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO order_history (
			id, customer_id, product_id, batch_id, order_amount, submitted_at,
			sku, name, price, unit, is_archived, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		node.Generate(), customerID, productID, node.Generate(), 3.0, submittedAt,
		"SKU-1", "Widget", 2.5, "box", archivedAt != nil, archivedAt,
	).Error)
}

func historyCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&historydomain.Snapshot{}).Count(&count).Error)
	return count
}

func TestPurgeHistoryJob(t *testing.T) {
	sched, db, clk, node := newTestScheduler(t)
	ctx := context.Background()
	customerID := node.Generate()
	productID := node.Generate()
	require.NoError(t, db.Exec(`INSERT INTO customers (id, username) VALUES (?, ?)`, customerID, "acme").Error)
	require.NoError(t, db.Exec(`INSERT INTO products (id, customer_id, sku) VALUES (?, ?, ?)`, productID, customerID, "SKU-1").Error)

	now := clk.Now()
	staleArchive := now.AddDate(0, 0, -90)
	freshArchive := now.AddDate(0, 0, -10)

	// Archived long ago, eligible.
	seedSnapshot(t, db, node, customerID, productID, staleArchive, &staleArchive)
	// Same age but never archived, must survive.
	seedSnapshot(t, db, node, customerID, productID, staleArchive, nil)
	// Archived inside the retention window, must survive.
	seedSnapshot(t, db, node, customerID, productID, staleArchive, &freshArchive)

	require.NoError(t, sched.PurgeHistoryJob(ctx))
	assert.Equal(t, int64(2), historyCount(t, db))

	// A second run finds nothing left to delete.
	require.NoError(t, sched.PurgeHistoryJob(ctx))
	assert.Equal(t, int64(2), historyCount(t, db))
}

func TestReconcileOrphansJob(t *testing.T) {
	sched, db, clk, node := newTestScheduler(t)
	ctx := context.Background()

	customerID := node.Generate()
	productID := node.Generate()
	goneCustomer := node.Generate()
	goneProduct := node.Generate()
	require.NoError(t, db.Exec(`INSERT INTO customers (id, username) VALUES (?, ?)`, customerID, "acme").Error)
	require.NoError(t, db.Exec(`INSERT INTO products (id, customer_id, sku) VALUES (?, ?, ?)`, productID, customerID, "SKU-1").Error)

	now := clk.Now()
	insertRecord := func(customer, product snowflake.ID) {
		require.NoError(t, db.Exec(
			`INSERT INTO order_records (id, customer_id, product_id, draft_amount) VALUES (?, ?, ?, ?)`,
			node.Generate(), customer, product, 5.0,
		).Error)
	}
	insertRecord(customerID, productID)
	insertRecord(goneCustomer, productID)
	insertRecord(customerID, goneProduct)

	seedSnapshot(t, db, node, customerID, productID, now, nil)
	seedSnapshot(t, db, node, goneCustomer, productID, now, nil)

	require.NoError(t, sched.ReconcileOrphansJob(ctx))

	var ledgerRows int64
	require.NoError(t, db.Table("order_records").Count(&ledgerRows).Error)
	assert.Equal(t, int64(1), ledgerRows)
	assert.Equal(t, int64(1), historyCount(t, db))
}

func TestExpireSessionsJob(t *testing.T) {
	sched, db, clk, node := newTestScheduler(t)
	ctx := context.Background()

	now := clk.Now()
	insertSession := func(token string, expiresAt time.Time) {
		require.NoError(t, db.Exec(
			`INSERT INTO sessions (token, principal_id, role, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
			token, node.Generate(), "customer", expiresAt, now.Add(-time.Hour),
		).Error)
	}
	insertSession("expired", now.Add(-time.Minute))
	insertSession("live", now.Add(time.Hour))

	require.NoError(t, sched.ExpireSessionsJob(ctx))

	var remaining []string
	require.NoError(t, db.Table("sessions").Pluck("token", &remaining).Error)
	assert.Equal(t, []string{"live"}, remaining)
}

func TestRunOnceKeepsSweepingAfterFailure(t *testing.T) {
	sched, db, clk, node := newTestScheduler(t)
	ctx := context.Background()

	// Break the first job's table; the later jobs must still run.
	require.NoError(t, db.Exec(`DROP TABLE order_history`).Error)

	now := clk.Now()
	require.NoError(t, db.Exec(
		`INSERT INTO sessions (token, principal_id, role, expires_at) VALUES (?, ?, ?, ?)`,
		"expired", node.Generate(), "customer", now.Add(-time.Minute),
	).Error)

	err := sched.RunOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge_history")

	var sessions int64
	require.NoError(t, db.Table("sessions").Count(&sessions).Error)
	assert.Equal(t, int64(0), sessions)
}
