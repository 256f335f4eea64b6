package store

import (
	"sort"
	"time"

	"classline/pkg/models"
)

// Pure transforms over an ordered message list. The list is always kept
// strictly createdAt-descending (newest first); every transform copies
// its input and keys entries by message identity (server id, or the
// client-local id while pending). Tombstones are ids whose hard delete
// already succeeded locally; list data for those ids is dropped on every
// merge so a stale in-flight fetch cannot resurrect them.

func clone(list []models.Message) []models.Message {
	out := make([]models.Message, len(list))
	copy(out, list)
	return out
}

func sortDesc(list []models.Message) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// insertPending places a freshly composed pending message at the head.
func insertPending(list []models.Message, msg models.Message) []models.Message {
	out := make([]models.Message, 0, len(list)+1)
	out = append(out, msg)
	for _, m := range list {
		if m.Key() == msg.Key() {
			continue
		}
		out = append(out, m)
	}
	return out
}

// confirm replaces the pending entry identified by localID with the
// server-returned message. Fields the server omitted fall back to the
// pending entry. If the server copy already arrived via a concurrent
// poll, the pending entry is dropped instead of duplicated.
func confirm(list []models.Message, localID string, server models.Message) []models.Message {
	out := make([]models.Message, 0, len(list))
	confirmedElsewhere := false
	for _, m := range list {
		if server.ID != "" && m.ID == server.ID {
			confirmedElsewhere = true
		}
	}
	for _, m := range list {
		if m.LocalID == localID && m.Pending {
			if confirmedElsewhere {
				continue
			}
			out = append(out, mergeConfirmed(m, server))
			continue
		}
		out = append(out, m)
	}
	sortDesc(out)
	return out
}

func mergeConfirmed(pending, server models.Message) models.Message {
	m := server
	m.Pending = false
	m.LocalID = pending.LocalID
	if m.ConversationID == "" {
		m.ConversationID = pending.ConversationID
	}
	if m.SenderID == "" {
		m.SenderID = pending.SenderID
	}
	if m.SenderRole == "" {
		m.SenderRole = pending.SenderRole
	}
	if m.Content == "" {
		m.Content = pending.Content
	}
	if m.Type == "" {
		m.Type = pending.Type
	}
	if m.AttachmentURL == "" {
		m.AttachmentURL = pending.AttachmentURL
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = pending.CreatedAt
	}
	return m
}

// mergePage merges a fresh first page (poll refresh or initial load)
// into the working set as a head-window replacement: entries at or newer
// than the incoming page's oldest timestamp are replaced by the page,
// while strictly older entries (loaded through pagination or seeded from
// the cache) are kept. Pending entries survive the merge, tombstoned ids
// are dropped everywhere, and local-first read/clear state is kept when
// the server copy does not reflect it yet. An empty page replaces
// nothing.
func mergePage(list []models.Message, page []models.Message, tombstones map[string]struct{}) []models.Message {
	var cutoff time.Time
	haveWindow := false
	incoming := make(map[string]struct{}, len(page))
	for _, m := range page {
		if m.ID == "" {
			continue
		}
		incoming[m.ID] = struct{}{}
		if !haveWindow || m.CreatedAt.Before(cutoff) {
			cutoff = m.CreatedAt
			haveWindow = true
		}
	}

	prev := make(map[string]models.Message, len(list))
	out := make([]models.Message, 0, len(list)+len(page))
	for _, m := range list {
		if m.Pending {
			out = append(out, m)
			continue
		}
		if m.ID == "" {
			continue
		}
		prev[m.ID] = m
		if _, dead := tombstones[m.ID]; dead {
			continue
		}
		if _, dup := incoming[m.ID]; dup {
			continue
		}
		// Inside the refreshed window but absent from it: gone upstream.
		if haveWindow && !m.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, m)
	}
	seen := make(map[string]struct{}, len(page))
	for _, m := range page {
		if m.ID == "" {
			continue
		}
		if _, dead := tombstones[m.ID]; dead {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		if old, ok := prev[m.ID]; ok {
			m = keepLocalState(old, m)
		}
		out = append(out, m)
	}
	// Drop pending entries whose server copy is now present.
	out = dropConfirmedPending(out)
	sortDesc(out)
	return out
}

// appendPage appends a strictly older page to the tail, de-duplicating
// by id in case of overlapping windows.
func appendPage(list []models.Message, page []models.Message, tombstones map[string]struct{}) []models.Message {
	out := clone(list)
	seen := make(map[string]struct{}, len(list))
	for _, m := range list {
		if m.ID != "" {
			seen[m.ID] = struct{}{}
		}
	}
	for _, m := range page {
		if m.ID == "" {
			continue
		}
		if _, dead := tombstones[m.ID]; dead {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	sortDesc(out)
	return out
}

func keepLocalState(old, incoming models.Message) models.Message {
	if old.IsRead && !incoming.IsRead {
		incoming.IsRead = true
		incoming.ReadAt = old.ReadAt
	}
	if old.ClearedAt != nil && incoming.ClearedAt == nil {
		incoming.ClearedAt = old.ClearedAt
		incoming.Content = old.Content
	}
	return incoming
}

func dropConfirmedPending(list []models.Message) []models.Message {
	ids := make(map[string]struct{}, len(list))
	for _, m := range list {
		if !m.Pending && m.ID != "" {
			ids[m.ID] = struct{}{}
		}
	}
	out := list[:0]
	for _, m := range list {
		if m.Pending && m.ID != "" {
			if _, ok := ids[m.ID]; ok {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// markRead flags the given ids read at the given time. Already-read
// entries are untouched so the transform is idempotent.
func markRead(list []models.Message, ids map[string]struct{}, now time.Time) []models.Message {
	out := clone(list)
	for i := range out {
		if _, ok := ids[out[i].Key()]; !ok {
			continue
		}
		if out[i].IsRead {
			continue
		}
		out[i].IsRead = true
		t := now
		out[i].ReadAt = &t
	}
	return out
}

// setEdited replaces content and stamps EditedAt for one id.
func setEdited(list []models.Message, id, content string, at time.Time) []models.Message {
	out := clone(list)
	for i := range out {
		if out[i].Key() != id {
			continue
		}
		out[i].Content = content
		t := at
		out[i].EditedAt = &t
	}
	return out
}

// setCleared soft-clears one id: content becomes exactly the sentinel
// and ClearedAt is stamped. The entry stays present.
func setCleared(list []models.Message, id, sentinel string, at time.Time) []models.Message {
	out := clone(list)
	for i := range out {
		if out[i].Key() != id {
			continue
		}
		out[i].Content = sentinel
		t := at
		out[i].ClearedAt = &t
	}
	return out
}

// remove drops the given ids from the list.
func remove(list []models.Message, ids map[string]struct{}) []models.Message {
	out := make([]models.Message, 0, len(list))
	for _, m := range list {
		if _, ok := ids[m.Key()]; ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
