package bootstrap

import (
	"context"

	"github.com/strafemod/paintkit/internal/logger"
)

// Shutdown tears the plugin down in order: stop taking ops traffic, stop the
// periodic jobs, then drain the worker pool so in-flight backend sends
// finish. Errors are logged, never propagated; unload must not fail.
func (a *App) Shutdown(ctx context.Context) {
	logger.Info("plugin shutting down")

	if err := a.Ops.Stop(ctx); err != nil {
		logger.Error("ops server shutdown failed", "error", err)
	}

	a.Scheduler.Stop()
	a.Pool.Stop()

	logger.Info("plugin stopped")
}
