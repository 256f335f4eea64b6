// Package engine orchestrates one conversation screen: optimistic
// sending, time-boxed editing, role-based erasure, local-first read
// tracking, pagination, and the poll scheduler. All state flows through
// the message store; the engine itself holds only flags and guards.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"classline/pkg/api"
	"classline/pkg/cache"
	"classline/pkg/config"
	"classline/pkg/logger"
	"classline/pkg/models"
	"classline/pkg/session"
	"classline/pkg/store"
	"classline/pkg/telemetry"
)

// Backend is the slice of the REST client the engine consumes.
// *api.Client satisfies it; tests substitute fakes.
type Backend interface {
	GetMessages(ctx context.Context, convID string, page, pageSize int) (models.Page, error)
	SendMessage(ctx context.Context, convID, content string, msgType models.MessageType, attachmentURL string) (models.Message, error)
	MarkAsRead(ctx context.Context, convID string) error
	EditMessage(ctx context.Context, msgID, newContent string) error
	DeleteMessage(ctx context.Context, msgID, convID string) error
	ClearMessageText(ctx context.Context, msgID string) error
	BulkDeleteMessages(ctx context.Context, msgIDs []string, dt api.DeleteType) (int, error)
	LeaveConversation(ctx context.Context, convID string) error
	DeleteConversation(ctx context.Context, convID string) error
}

// Options tune one engine instance. Zero values fall back to the
// package defaults from config.
type Options struct {
	Sentinel           string
	PageSize           int
	PollInterval       time.Duration
	RefreshMinInterval time.Duration
	EditWindow         time.Duration
}

func (o Options) withDefaults() Options {
	if o.Sentinel == "" {
		o.Sentinel = config.DefaultSentinel
	}
	if o.PageSize <= 0 {
		o.PageSize = config.DefaultPageSize
	}
	if o.PollInterval <= 0 {
		o.PollInterval = config.DefaultPollInterval
	}
	if o.RefreshMinInterval <= 0 {
		o.RefreshMinInterval = config.DefaultRefreshMinInterval
	}
	if o.EditWindow <= 0 {
		o.EditWindow = EditWindow
	}
	return o
}

// Flags are the busy indicators exposed to the UI collaborator.
type Flags struct {
	Loading     bool
	Sending     bool
	Refreshing  bool
	LoadingMore bool
}

type Engine struct {
	convID  string
	sess    session.Session
	backend Backend
	store   *store.Store
	cache   *cache.Cache // optional; nil disables local persistence
	opts    Options

	sched *Scheduler

	loading     atomic.Bool
	sending     atomic.Bool
	refreshing  atomic.Bool
	loadingMore atomic.Bool

	closed      atomic.Bool
	readFlushed atomic.Bool

	pg paginationState

	sel selection
}

// New builds an engine for one conversation. cch may be nil.
func New(convID string, sess session.Session, backend Backend, cch *cache.Cache, opts Options) (*Engine, error) {
	if convID == "" {
		return nil, fmt.Errorf("conversation id missing")
	}
	if !sess.Valid() {
		return nil, ErrInvalidSession
	}
	e := &Engine{
		convID:  convID,
		sess:    sess,
		backend: backend,
		store:   store.New(),
		cache:   cch,
		opts:    opts.withDefaults(),
	}
	e.sel.init()
	e.sched = NewScheduler(e.opts.PollInterval, e.opts.RefreshMinInterval, e.refresh)
	return e, nil
}

// Store exposes the underlying message store for subscription.
func (e *Engine) Store() *store.Store { return e.store }

// Messages returns the current ordered list, newest first.
func (e *Engine) Messages() []models.Message { return e.store.Snapshot() }

// Flags returns a snapshot of the busy indicators.
func (e *Engine) Flags() Flags {
	return Flags{
		Loading:     e.loading.Load(),
		Sending:     e.sending.Load(),
		Refreshing:  e.refreshing.Load(),
		LoadingMore: e.loadingMore.Load(),
	}
}

// Open brings the screen up: seed from the local cache for instant
// paint, fetch the first page, flush read state once, start polling.
// The initial load failing is not fatal; the scheduler retries.
func (e *Engine) Open(ctx context.Context) error {
	e.seedFromCache()
	e.loading.Store(true)
	err := e.loadPage(ctx, 1)
	e.loading.Store(false)
	if err != nil {
		logger.Warn("initial_load_failed", "conversation", e.convID, "error", err)
	} else {
		e.flushReads(ctx)
		// The initial load counts as a refresh for the debounce guard,
		// so starting the scheduler does not fetch the page twice.
		_ = e.sched.limiter.Allow()
	}
	e.sched.Start()
	return err
}

// Close tears the screen down: future ticks are cancelled, in-flight
// requests are left to resolve (their results are dropped by the
// closed guard).
func (e *Engine) Close() {
	e.closed.Store(true)
	e.sched.Stop()
}

// OnFocus restarts polling and triggers a debounced refresh.
func (e *Engine) OnFocus() {
	if e.closed.Load() {
		return
	}
	e.sched.Start()
}

// OnBlur stops polling; in-flight requests still resolve.
func (e *Engine) OnBlur() { e.sched.Stop() }

// OnForeground mirrors app foregrounding: same behavior as focus.
func (e *Engine) OnForeground() { e.OnFocus() }

// OnBackground mirrors app backgrounding: same behavior as blur.
func (e *Engine) OnBackground() { e.OnBlur() }

// Refresh requests an immediate poll, subject to the debounce guard.
// Fire-and-forget: the poll runs asynchronously and failures are silent.
func (e *Engine) Refresh() { e.sched.Refresh() }

// refresh is the scheduler's tick body. Failures are silent: logged,
// counted, store untouched. A completion arriving after Close is
// dropped so a stale screen context never mutates a dead store.
func (e *Engine) refresh(ctx context.Context) {
	if e.closed.Load() {
		return
	}
	e.refreshing.Store(true)
	defer e.refreshing.Store(false)
	page, err := e.backend.GetMessages(ctx, e.convID, 1, e.opts.PageSize)
	if err != nil {
		telemetry.PollFailures.Inc()
		logger.Debug("poll_failed", "conversation", e.convID, "error", err)
		return
	}
	if e.closed.Load() {
		return
	}
	e.store.ApplyMergePage(page.Messages)
	e.pg.notePage(1, page.HasMore)
	e.cacheBatch(page.Messages)
	telemetry.PollsTotal.Inc()
	// When the initial load failed, the once-per-open read flush still
	// has to happen; the guard makes this a no-op otherwise.
	e.flushReads(ctx)
}

func (e *Engine) seedFromCache() {
	if e.cache == nil || !e.cache.Ready() {
		return
	}
	msgs, err := e.cache.LoadConversation(e.convID, e.opts.PageSize)
	if err != nil {
		logger.Warn("cache_seed_failed", "conversation", e.convID, "error", err)
		return
	}
	if len(msgs) > 0 {
		e.store.ApplyMergePage(msgs)
	}
}

func (e *Engine) cacheBatch(msgs []models.Message) {
	if e.cache == nil || !e.cache.Ready() {
		return
	}
	if err := e.cache.SaveBatch(msgs); err == nil {
		telemetry.MessagesCached.Add(float64(len(msgs)))
	}
}

func (e *Engine) cacheOne(msg models.Message) {
	if e.cache == nil || !e.cache.Ready() {
		return
	}
	if err := e.cache.SaveMessage(msg); err == nil {
		telemetry.MessagesCached.Inc()
	}
}

// Leave removes the caller from the conversation and drops local state.
func (e *Engine) Leave(ctx context.Context) error {
	if err := e.backend.LeaveConversation(ctx, e.convID); err != nil {
		return err
	}
	e.dropLocal()
	return nil
}

// DeleteConversation deletes the conversation and drops local state.
func (e *Engine) DeleteConversation(ctx context.Context) error {
	if err := e.backend.DeleteConversation(ctx, e.convID); err != nil {
		return err
	}
	e.dropLocal()
	return nil
}

func (e *Engine) dropLocal() {
	e.sched.Stop()
	e.store.Reset()
	if e.cache != nil && e.cache.Ready() {
		if err := e.cache.DropConversation(e.convID); err != nil {
			logger.Warn("cache_drop_failed", "conversation", e.convID, "error", err)
		}
	}
}
