package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"classline/pkg/logger"
	"classline/pkg/models"
	"classline/pkg/telemetry"
)

var localSeq uint64

// genLocalID produces a client-local message id. The "local-" prefix
// keeps it disjoint from any server id space.
func genLocalID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&localSeq, 1)
	return fmt.Sprintf("local-%d-%d", n, s)
}

// Send performs an optimistic text send: a pending message appears at
// the head immediately, then either gets confirmed (replaced by the
// server copy, matched by its client-local id) or rolled back. A failed
// send does not restore the typed text; the caller surfaces the error
// and lets the user retry.
func (e *Engine) Send(ctx context.Context, content string) error {
	return e.send(ctx, content, models.TypeText, "")
}

// SendAttachment sends an attachment message with optional caption text.
func (e *Engine) SendAttachment(ctx context.Context, content, attachmentURL string) error {
	if attachmentURL == "" {
		return fmt.Errorf("%w: attachment url missing", ErrSendFailed)
	}
	return e.send(ctx, content, models.TypeAttachment, attachmentURL)
}

func (e *Engine) send(ctx context.Context, content string, msgType models.MessageType, attachmentURL string) error {
	content = strings.TrimSpace(content)
	if content == "" && attachmentURL == "" {
		return nil
	}
	e.sending.Store(true)
	defer e.sending.Store(false)

	pending := models.Message{
		LocalID:        genLocalID(),
		Pending:        true,
		ConversationID: e.convID,
		SenderID:       e.sess.UserID,
		SenderRole:     e.sess.Role,
		Content:        content,
		Type:           msgType,
		AttachmentURL:  attachmentURL,
		CreatedAt:      time.Now().UTC(),
	}
	e.store.ApplyInsertPending(pending)

	server, err := e.backend.SendMessage(ctx, e.convID, content, msgType, attachmentURL)
	if err != nil {
		// Roll back without tombstoning: the id was never a server id.
		e.store.ApplyRemove([]string{pending.LocalID}, false)
		telemetry.Sends.WithLabelValues("error").Inc()
		logger.Warn("send_failed", "conversation", e.convID, "error", err)
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	e.store.ApplyConfirm(pending.LocalID, server)
	if confirmed, ok := e.store.Get(server.ID); ok {
		e.cacheOne(confirmed)
	}
	telemetry.Sends.WithLabelValues("ok").Inc()
	return nil
}
