package models

import "time"

// Role identifies the sender/viewer side of a conversation.
type Role string

const (
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

// MessageType distinguishes plain text from attachment messages.
type MessageType string

const (
	TypeText       MessageType = "text"
	TypeAttachment MessageType = "attachment"
)

type Message struct {
	// ID is the server identity once confirmed. A message that has not
	// been confirmed yet carries only LocalID and Pending=true.
	ID      string `json:"id,omitempty"`
	LocalID string `json:"local_id,omitempty"`
	Pending bool   `json:"pending,omitempty"`

	ConversationID string      `json:"conversation_id"`
	SenderID       string      `json:"sender_id"`
	SenderRole     Role        `json:"sender_role"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	AttachmentURL  string      `json:"attachment_url,omitempty"`

	// CreatedAt is immutable once confirmed.
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	// ClearedAt set means content was soft-replaced with the sentinel;
	// the original content is not recoverable client-side.
	ClearedAt *time.Time `json:"cleared_at,omitempty"`

	// Read state is local-first; the server's per-participant last-read
	// marker stays authoritative.
	IsRead bool       `json:"is_read,omitempty"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	// IsOwn is an advisory wire flag; ownership is always recomputed
	// against the viewing session, never trusted from storage.
	IsOwn *bool `json:"is_own_message,omitempty"`
}

// Key returns the identity used by store transforms: the server ID when
// confirmed, the client-local ID while pending.
func (m Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return m.LocalID
}

// Cleared reports whether the message has been soft-cleared.
func (m Message) Cleared() bool { return m.ClearedAt != nil }
