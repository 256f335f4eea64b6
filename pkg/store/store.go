// Package store holds the ordered, id-keyed working set of messages for
// one conversation. It is the only mutable shared state in the engine:
// every mutation path funnels through an Apply* method, which runs a
// pure transform under the store lock and then notifies subscribers.
// Interleaved async completions (send confirm, poll merge, bulk delete
// result) are therefore safe in any arrival order.
package store

import (
	"sync"
	"time"

	"classline/pkg/models"
)

type Store struct {
	mu         sync.Mutex
	msgs       []models.Message
	tombstones map[string]struct{}

	subMu sync.Mutex
	subs  map[int]func()
	subID int
}

func New() *Store {
	return &Store{
		tombstones: make(map[string]struct{}),
		subs:       make(map[int]func()),
	}
}

// Subscribe registers a change listener and returns an unsubscribe func.
// Listeners are invoked after every applied mutation, outside the store
// lock, on the mutating goroutine.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.subID
	s.subID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns a copy of the current list, newest first.
func (s *Store) Snapshot() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.msgs)
}

// Len returns the number of messages currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// Get returns the message with the given id (server or local) if present.
func (s *Store) Get(id string) (models.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.Key() == id || (m.ID != "" && m.ID == id) {
			return m, true
		}
	}
	return models.Message{}, false
}

// Tombstoned reports whether the id was hard-deleted locally.
func (s *Store) Tombstoned(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tombstones[id]
	return ok
}

// UnreadFrom returns ids of messages not yet read that were sent by
// someone other than userID.
func (s *Store) UnreadFrom(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, m := range s.msgs {
		if !m.IsRead && m.SenderID != userID {
			ids = append(ids, m.Key())
		}
	}
	return ids
}

func (s *Store) apply(fn func([]models.Message) []models.Message) {
	s.mu.Lock()
	s.msgs = fn(s.msgs)
	s.mu.Unlock()
	s.notify()
}

// ApplyInsertPending inserts a freshly composed pending message at the head.
func (s *Store) ApplyInsertPending(msg models.Message) {
	s.apply(func(list []models.Message) []models.Message {
		return insertPending(list, msg)
	})
}

// ApplyConfirm replaces the pending entry (located by its client-local
// id, never by content equality) with the server-returned message.
func (s *Store) ApplyConfirm(localID string, server models.Message) {
	s.apply(func(list []models.Message) []models.Message {
		return confirm(list, localID, server)
	})
}

// ApplyMergePage merges a fresh first page into the head of the working
// set, preserving older paginated history, pending entries, and
// local-first read/clear state.
func (s *Store) ApplyMergePage(page []models.Message) {
	s.mu.Lock()
	s.msgs = mergePage(s.msgs, page, s.tombstones)
	s.mu.Unlock()
	s.notify()
}

// ApplyAppendPage appends a strictly older page to the tail.
func (s *Store) ApplyAppendPage(page []models.Message) {
	s.mu.Lock()
	s.msgs = appendPage(s.msgs, page, s.tombstones)
	s.mu.Unlock()
	s.notify()
}

// ApplyMarkRead flags the given ids read. Idempotent.
func (s *Store) ApplyMarkRead(ids []string, now time.Time) {
	set := idSet(ids)
	s.apply(func(list []models.Message) []models.Message {
		return markRead(list, set, now)
	})
}

// ApplySetEdited replaces content and stamps EditedAt for one id.
func (s *Store) ApplySetEdited(id, content string, at time.Time) {
	s.apply(func(list []models.Message) []models.Message {
		return setEdited(list, id, content, at)
	})
}

// ApplySetCleared soft-clears one id with the exact sentinel string.
func (s *Store) ApplySetCleared(id, sentinel string, at time.Time) {
	s.apply(func(list []models.Message) []models.Message {
		return setCleared(list, id, sentinel, at)
	})
}

// ApplyRemove drops the given ids. When tombstone is true (hard delete)
// the ids are also recorded so no later poll merge can resurrect them;
// rollback of a failed send passes tombstone=false.
func (s *Store) ApplyRemove(ids []string, tombstone bool) {
	set := idSet(ids)
	s.mu.Lock()
	if tombstone {
		for id := range set {
			s.tombstones[id] = struct{}{}
		}
	}
	s.msgs = remove(s.msgs, set)
	s.mu.Unlock()
	s.notify()
}

// Reset clears the working set and tombstones (conversation close).
func (s *Store) Reset() {
	s.mu.Lock()
	s.msgs = nil
	s.tombstones = make(map[string]struct{})
	s.mu.Unlock()
	s.notify()
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
