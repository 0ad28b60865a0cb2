// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup hydrates the scheduling service from the record store, then starts
// the snapshot sync worker and the loop that applies its updates. A failed
// first load aborts startup: serving an empty calendar would let users
// reserve days that are already taken.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	snap, err := deps.Records.Load(ctx)
	if err != nil {
		logger.Error("initial record store load failed", zap.Error(err))
		return fmt.Errorf("initial load: %w", err)
	}
	deps.Scheduling.Apply(snap)
	logger.Info("record store loaded",
		zap.Int("reservations", len(snap.Reservations)),
		zap.Int("users", len(snap.Users)),
		zap.String("time_zone", deps.Scheduling.Location().String()))

	if appCfg.DevSeed && appCfg.DevLogin {
		seeded, err := deps.Scheduling.SeedDemo(ctx)
		if err != nil {
			logger.Warn("demo seed not fully persisted", zap.Error(err))
		}
		if seeded {
			logger.Info("demo data seeded for development sign-in")
		}
	}

	deps.Sync.Start()
	// Run returns when Shutdown stops the worker and Updates closes.
	go func() {
		_ = deps.Scheduling.Run(context.Background(), deps.Sync.Updates())
	}()
	return nil
}
