package store

import (
	"testing"
	"time"

	"classline/pkg/models"
)

func TestStoreNotifiesSubscribers(t *testing.T) {
	s := New()
	calls := 0
	unsub := s.Subscribe(func() { calls++ })

	s.ApplyInsertPending(pendingMsg("local-1", time.Now().UTC()))
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	unsub()
	s.ApplyMarkRead([]string{"local-1"}, time.Now().UTC())
	if calls != 1 {
		t.Fatalf("unsubscribed listener still notified")
	}
}

func TestStoreHardDeleteIsAuthoritativeOverPoll(t *testing.T) {
	s := New()
	base := time.Now().UTC()
	s.ApplyMergePage([]models.Message{msg("m0", base), msg("m1", base.Add(-time.Minute))})

	s.ApplyRemove([]string{"m0"}, true)
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry after remove, got %d", s.Len())
	}

	// a stale poll still carrying m0 lands afterwards
	s.ApplyMergePage([]models.Message{msg("m0", base), msg("m1", base.Add(-time.Minute))})
	if _, ok := s.Get("m0"); ok {
		t.Fatalf("hard-deleted id resurrected by stale poll")
	}
	if !s.Tombstoned("m0") {
		t.Fatalf("expected m0 tombstoned")
	}
}

func TestStoreRollbackRemoveDoesNotTombstone(t *testing.T) {
	s := New()
	p := pendingMsg("local-1", time.Now().UTC())
	s.ApplyInsertPending(p)
	s.ApplyRemove([]string{"local-1"}, false)
	if s.Len() != 0 {
		t.Fatalf("expected empty store after rollback")
	}
	if s.Tombstoned("local-1") {
		t.Fatalf("rollback must not tombstone a client-local id")
	}
}

func TestUnreadFromExcludesOwnAndRead(t *testing.T) {
	s := New()
	base := time.Now().UTC()
	mine := msg("m0", base)
	mine.SenderID = "me"
	theirsRead := msg("m1", base.Add(-time.Minute))
	theirsRead.SenderID = "them"
	theirsRead.IsRead = true
	theirsUnread := msg("m2", base.Add(-2*time.Minute))
	theirsUnread.SenderID = "them"
	s.ApplyMergePage([]models.Message{mine, theirsRead, theirsUnread})

	unread := s.UnreadFrom("me")
	if len(unread) != 1 || unread[0] != "m2" {
		t.Fatalf("expected only m2 unread, got %v", unread)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.ApplyMergePage([]models.Message{msg("m0", time.Now().UTC())})
	snap := s.Snapshot()
	snap[0].Content = "mutated"
	if got, _ := s.Get("m0"); got.Content == "mutated" {
		t.Fatalf("snapshot aliases store memory")
	}
}
