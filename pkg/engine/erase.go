package engine

import (
	"context"
	"time"

	"classline/pkg/api"
	"classline/pkg/models"
	"classline/pkg/telemetry"
)

// Erasure is role-selected, not preference-selected: staff hard-delete
// (the message disappears and its id can never be resurrected by a
// stale poll), students soft-clear (content becomes exactly the
// configured sentinel and the entry stays visible).

// Erase removes or clears one message according to the acting role.
func (e *Engine) Erase(ctx context.Context, id string) error {
	m, ok := e.store.Get(id)
	if !ok {
		return ErrMessageNotFound
	}
	// A pending message has no server identity to erase; it either
	// confirms or rolls back on its own.
	if m.Pending {
		return ErrMessageNotFound
	}
	if !e.IsOwn(m) {
		return ErrNotOwnMessage
	}
	switch e.sess.Role {
	case models.RoleStaff:
		if err := e.backend.DeleteMessage(ctx, m.ID, e.convID); err != nil {
			return err
		}
		e.store.ApplyRemove([]string{m.ID}, true)
		e.uncacheOne(m.ID)
		telemetry.Erasures.WithLabelValues("hard").Inc()
	default:
		if err := e.backend.ClearMessageText(ctx, m.ID); err != nil {
			return err
		}
		e.store.ApplySetCleared(m.ID, e.opts.Sentinel, time.Now().UTC())
		if cleared, ok := e.store.Get(m.ID); ok {
			e.cacheOne(cleared)
		}
		telemetry.Erasures.WithLabelValues("soft").Inc()
	}
	return nil
}

// BulkResult is the tally presented to the user after a bulk erase:
// "Succeeded of Requested deleted".
type BulkResult struct {
	Requested int
	Succeeded int
}

// EraseBulk erases the given ids in one batched request with a uniform
// role-selected policy. The backend reports only a success count, which
// may be less than requested; the store is updated for exactly that
// many ids, in the order they were submitted, and the tally is returned
// so the UI never assumes full success.
func (e *Engine) EraseBulk(ctx context.Context, ids []string) (BulkResult, error) {
	res := BulkResult{Requested: len(ids)}
	if len(ids) == 0 {
		return res, nil
	}
	dt := api.DeleteSoft
	if e.sess.Role == models.RoleStaff {
		dt = api.DeleteHard
	}
	// Pending entries have no server id; already-cleared entries have
	// nothing left to soft-clear. Neither reaches the backend.
	eligible := make([]string, 0, len(ids))
	for _, id := range ids {
		m, ok := e.store.Get(id)
		if !ok || m.Pending {
			continue
		}
		if dt == api.DeleteSoft && m.Cleared() {
			continue
		}
		eligible = append(eligible, m.ID)
	}
	if len(eligible) == 0 {
		return res, nil
	}
	n, err := e.backend.BulkDeleteMessages(ctx, eligible, dt)
	if err != nil {
		return res, err
	}
	if n > len(eligible) {
		n = len(eligible)
	}
	res.Succeeded = n
	confirmed := eligible[:n]
	if dt == api.DeleteHard {
		e.store.ApplyRemove(confirmed, true)
		for _, id := range confirmed {
			e.uncacheOne(id)
		}
		telemetry.Erasures.WithLabelValues("hard").Add(float64(n))
	} else {
		now := time.Now().UTC()
		for _, id := range confirmed {
			e.store.ApplySetCleared(id, e.opts.Sentinel, now)
			if cleared, ok := e.store.Get(id); ok {
				e.cacheOne(cleared)
			}
		}
		telemetry.Erasures.WithLabelValues("soft").Add(float64(n))
	}
	e.sel.drop(confirmed)
	return res, nil
}

func (e *Engine) uncacheOne(id string) {
	if e.cache == nil || !e.cache.Ready() {
		return
	}
	_ = e.cache.DeleteMessage(id)
}
