// Package retention prunes old messages from the local cache on a cron
// schedule so the on-device footprint stays bounded. It never touches
// server state; a pruned message simply reloads through pagination if
// the user scrolls back far enough.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"classline/pkg/cache"
	"classline/pkg/config"
	"classline/pkg/logger"
	"classline/pkg/telemetry"
)

// Start starts the cache retention scheduler if enabled. Returns a
// cancel func.
func Start(ctx context.Context, cfg *config.Config, cch *cache.Cache) (context.CancelFunc, error) {
	if !cfg.Retention.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}
	if cch == nil || !cch.Ready() {
		return nil, fmt.Errorf("retention enabled but cache not opened")
	}

	// default: daily @03:00, after the school day's traffic
	cronExpr := cfg.Retention.Cron
	if cronExpr == "" {
		cronExpr = "0 3 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Retention.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Retention.Cron)
	}

	period := cfg.RetentionPeriod()
	logger.Info("retention_enabled", "cron", cronExpr, "period", period)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cch, cronExpr, period)
	return cancel, nil
}

// RunOnce triggers a single prune immediately, outside the schedule.
func RunOnce(cch *cache.Cache, period time.Duration) error {
	return runOnce(cch, period)
}

// runScheduler uses gronx to compute the next tick for the configured
// cron expression and sleeps until that time.
func runScheduler(ctx context.Context, cch *cache.Cache, cronExpr string, period time.Duration) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if err := runOnce(cch, period); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}

func runOnce(cch *cache.Cache, period time.Duration) error {
	cutoff := time.Now().UTC().Add(-period)
	removed, err := cch.PruneBefore(cutoff)
	if err != nil {
		return err
	}
	telemetry.CachePruned.Add(float64(removed))
	return nil
}
