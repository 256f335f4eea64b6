package engine

import (
	"context"
	"sync"

	"classline/pkg/logger"
)

// paginationState tracks the cursor over older history. Page 1 is the
// live head and is owned by refresh; LoadMore walks 2, 3, ... until the
// server reports no more pages.
type paginationState struct {
	mu      sync.Mutex
	page    int
	hasMore bool
}

func (p *paginationState) notePage(page int, hasMore bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page >= p.page {
		p.page = page
		p.hasMore = hasMore
	}
}

func (p *paginationState) next() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.page == 0 {
		return 1, true
	}
	return p.page + 1, p.hasMore
}

// HasMore reports whether older pages remain on the server.
func (e *Engine) HasMore() bool {
	_, ok := e.pg.next()
	return ok
}

// LoadMore fetches the next older page and appends it to the tail,
// de-duplicated by id. Once the server reports has_more=false no
// further requests are issued.
func (e *Engine) LoadMore(ctx context.Context) error {
	next, ok := e.pg.next()
	if !ok {
		return nil
	}
	if !e.loadingMore.CompareAndSwap(false, true) {
		return nil
	}
	defer e.loadingMore.Store(false)
	return e.loadPage(ctx, next)
}

// loadPage fetches one page: page 1 replaces the working set, later
// pages append strictly older items.
func (e *Engine) loadPage(ctx context.Context, page int) error {
	res, err := e.backend.GetMessages(ctx, e.convID, page, e.opts.PageSize)
	if err != nil {
		return err
	}
	if e.closed.Load() {
		return nil
	}
	if page <= 1 {
		e.store.ApplyMergePage(res.Messages)
	} else {
		e.store.ApplyAppendPage(res.Messages)
	}
	e.pg.notePage(page, res.HasMore)
	e.cacheBatch(res.Messages)
	logger.Debug("page_loaded", "conversation", e.convID, "page", page, "count", len(res.Messages), "has_more", res.HasMore)
	return nil
}
