package models

import "time"

// Conversation metadata is created and mutated by the backend; the
// engine only reads identity and writes read-marker updates.
type Conversation struct {
	ID           string        `json:"id"`
	Topic        string        `json:"topic,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// Participant carries the per-participant last-read marker the server
// uses as the authoritative unread source.
type Participant struct {
	UserID     string     `json:"user_id"`
	Role       Role       `json:"role"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"`
}

// Page is one window of a conversation's history as returned by the
// backend, newest first.
type Page struct {
	Messages []Message `json:"messages"`
	HasMore  bool      `json:"has_more"`
}
