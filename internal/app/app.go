package app

import (
	"context"
	"fmt"

	"classline/internal/retention"
	"classline/pkg/api"
	"classline/pkg/cache"
	"classline/pkg/config"
	"classline/pkg/engine"
	"classline/pkg/session"
)

// App wires the daemon components: config, local cache, REST client,
// one conversation engine, and the retention runner.
type App struct {
	cfg    *config.Config
	sess   session.Session
	convID string

	cache  *cache.Cache
	client *api.Client
	eng    *engine.Engine

	retentionCancel context.CancelFunc
	metricsStop     func()
}

// New validates config, opens the cache, and builds the engine. It does
// not start polling; call Run.
func New(cfg *config.Config, sess session.Session, convID string) (*App, error) {
	if err := validateConfig(cfg, sess, convID); err != nil {
		return nil, err
	}

	cch, err := cache.Open(cfg.Cache.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", cfg.Cache.DBPath, err)
	}

	client := api.New(cfg.Backend.BaseURL, sess.AuthCode, api.WithTimeout(cfg.RequestTimeout()))

	eng, err := engine.New(convID, sess, client, cch, engine.Options{
		Sentinel:           cfg.Sentinel(),
		PageSize:           cfg.PageSize(),
		PollInterval:       cfg.PollInterval(),
		RefreshMinInterval: cfg.RefreshMinInterval(),
	})
	if err != nil {
		_ = cch.Close()
		return nil, err
	}

	return &App{cfg: cfg, sess: sess, convID: convID, cache: cch, client: client, eng: eng}, nil
}

// Engine returns the conversation engine.
func (a *App) Engine() *engine.Engine { return a.eng }

// Run opens the conversation, starts retention and the metrics
// listener, and blocks until ctx is canceled.
func (a *App) Run(ctx context.Context, metricsAddr string) error {
	cancel, err := retention.Start(ctx, a.cfg, a.cache)
	if err != nil {
		return err
	}
	a.retentionCancel = cancel

	if metricsAddr != "" {
		a.metricsStop = a.startMetrics(metricsAddr)
	}

	// An initial load failure is not fatal: the scheduler keeps retrying.
	_ = a.eng.Open(ctx)

	<-ctx.Done()
	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	a.eng.Close()
	if a.retentionCancel != nil {
		a.retentionCancel()
	}
	if a.metricsStop != nil {
		a.metricsStop()
	}
	_ = a.cache.Close()
}
