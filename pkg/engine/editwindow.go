package engine

import (
	"time"

	"classline/pkg/models"
)

// EditWindow is how long after creation a message stays editable.
const EditWindow = 60 * time.Second

// CanEdit gates edit eligibility by message age. Evaluated both for the
// UI affordance and again immediately before the edit call, since the
// clock keeps moving between render and action. Pending messages have
// no server identity yet and are never editable.
func CanEdit(m models.Message, now time.Time) bool {
	return canEditWithin(m, now, EditWindow)
}

func canEditWithin(m models.Message, now time.Time, window time.Duration) bool {
	if m.Pending || m.Cleared() {
		return false
	}
	return now.Sub(m.CreatedAt) <= window
}

// CanEdit reports whether the given message id is editable by the
// viewer right now.
func (e *Engine) CanEdit(id string) bool {
	m, ok := e.store.Get(id)
	if !ok {
		return false
	}
	return e.IsOwn(m) && canEditWithin(m, time.Now().UTC(), e.opts.EditWindow)
}
