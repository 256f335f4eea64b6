package engine

import "classline/pkg/models"

// IsOwn classifies a message as authored by the viewing session. An
// explicit wire flag wins when present; otherwise ownership derives
// from the sender role matching the viewer role. Pure and deterministic.
func IsOwn(m models.Message, viewerRole models.Role) bool {
	if m.IsOwn != nil {
		return *m.IsOwn
	}
	return m.SenderRole == viewerRole
}

// IsOwn reports whether the viewer of this engine authored the message.
func (e *Engine) IsOwn(m models.Message) bool {
	return IsOwn(m, e.sess.Role)
}
