package scheduler

import (
	"context"

	"github.com/smallbiznis/orderdesk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:   cfg.SweepInterval,
		RetentionDays: cfg.RetentionDays,
	}.withDefaults()
}

// NewScheduler starts the sweep loop with the application. The first
// sweep runs immediately so a long-stopped deployment catches up on
// retention without waiting a full interval.
func NewScheduler(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
