package engine

import (
	"context"
	"strings"
	"time"
)

// Edit replaces a message's content. The edit window is re-checked here
// regardless of what the UI showed, so a stale affordance cannot slip
// an over-age edit through.
func (e *Engine) Edit(ctx context.Context, id, newContent string) error {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return nil
	}
	m, ok := e.store.Get(id)
	if !ok {
		return ErrMessageNotFound
	}
	if !e.IsOwn(m) {
		return ErrNotOwnMessage
	}
	now := time.Now().UTC()
	if !canEditWithin(m, now, e.opts.EditWindow) {
		return ErrEditWindowExpired
	}
	if err := e.backend.EditMessage(ctx, m.ID, newContent); err != nil {
		return err
	}
	e.store.ApplySetEdited(m.ID, newContent, now)
	if updated, ok := e.store.Get(m.ID); ok {
		e.cacheOne(updated)
	}
	return nil
}
