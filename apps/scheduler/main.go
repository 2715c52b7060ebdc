package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/orderdesk/internal/auth"
	"github.com/smallbiznis/orderdesk/internal/clock"
	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/smallbiznis/orderdesk/internal/customer"
	"github.com/smallbiznis/orderdesk/internal/history"
	"github.com/smallbiznis/orderdesk/internal/ledger"
	"github.com/smallbiznis/orderdesk/internal/logger"
	"github.com/smallbiznis/orderdesk/internal/migration"
	"github.com/smallbiznis/orderdesk/internal/scheduler"
	"github.com/smallbiznis/orderdesk/pkg/db"
	"go.uber.org/fx"
)

// Standalone sweep worker for deployments that keep the HTTP portal
// and the retention jobs on separate processes.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		ledger.Module,
		history.Module,
		auth.Module,
		customer.Module,

		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
