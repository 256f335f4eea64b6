package engine

import (
	"testing"
	"time"

	"classline/pkg/models"
)

func TestIsOwnDerivesFromRole(t *testing.T) {
	staffMsg := models.Message{SenderRole: models.RoleStaff}
	studentMsg := models.Message{SenderRole: models.RoleStudent}

	if !IsOwn(staffMsg, models.RoleStaff) || IsOwn(staffMsg, models.RoleStudent) {
		t.Fatalf("staff message ownership wrong")
	}
	if !IsOwn(studentMsg, models.RoleStudent) || IsOwn(studentMsg, models.RoleStaff) {
		t.Fatalf("student message ownership wrong")
	}
}

func TestIsOwnPrefersExplicitFlag(t *testing.T) {
	flag := false
	m := models.Message{SenderRole: models.RoleStaff, IsOwn: &flag}
	if IsOwn(m, models.RoleStaff) {
		t.Fatalf("explicit flag must win over role derivation")
	}
}

func TestCanEditWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	fresh := models.Message{ID: "m1", CreatedAt: now.Add(-30 * time.Second)}
	onEdge := models.Message{ID: "m2", CreatedAt: now.Add(-EditWindow)}
	stale := models.Message{ID: "m3", CreatedAt: now.Add(-EditWindow - time.Millisecond)}

	if !CanEdit(fresh, now) {
		t.Fatalf("30s-old message must be editable")
	}
	if !CanEdit(onEdge, now) {
		t.Fatalf("exactly-60s-old message must be editable")
	}
	if CanEdit(stale, now) {
		t.Fatalf("over-60s-old message must not be editable")
	}
}

func TestCanEditRejectsPendingAndCleared(t *testing.T) {
	now := time.Now().UTC()
	pending := models.Message{LocalID: "local-1", Pending: true, CreatedAt: now}
	if CanEdit(pending, now) {
		t.Fatalf("pending message has no server identity to edit")
	}
	cleared := models.Message{ID: "m1", CreatedAt: now, ClearedAt: &now}
	if CanEdit(cleared, now) {
		t.Fatalf("cleared message must not be editable")
	}
}
