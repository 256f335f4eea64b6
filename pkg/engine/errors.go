package engine

import "errors"

// All engine errors are recoverable: the caller may retry the action or
// navigate away and back, which re-triggers a fresh load.
var (
	ErrInvalidSession    = errors.New("session missing user, role, or auth code")
	ErrSendFailed        = errors.New("send failed")
	ErrEditWindowExpired = errors.New("edit window expired")
	ErrNotOwnMessage     = errors.New("message not owned by viewer")
	ErrMessageNotFound   = errors.New("message not found")
)
