package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"classline/pkg/api"
	"classline/pkg/models"
	"classline/pkg/session"
)

var errBackendDown = errors.New("backend down")

// fakeBackend scripts backend behavior for engine tests.
type fakeBackend struct {
	mu sync.Mutex

	pages map[int]models.Page
	fail  bool

	sendRes models.Message
	sendErr error

	bulkN   int
	bulkErr error

	editErr  error
	delErr   error
	clearErr error

	getCalls  int
	sendCalls int
	markCalls int
	delCalls  []string
	clearIDs  []string
	bulkIDs   []string
	bulkType  api.DeleteType
	leaves    int
	deletes   int
}

func (f *fakeBackend) GetMessages(_ context.Context, _ string, page, _ int) (models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.fail {
		return models.Page{}, errBackendDown
	}
	p, ok := f.pages[page]
	if !ok {
		return models.Page{}, nil
	}
	return p, nil
}

func (f *fakeBackend) SendMessage(_ context.Context, convID, content string, msgType models.MessageType, attachmentURL string) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return models.Message{}, f.sendErr
	}
	if f.sendRes.ID != "" {
		return f.sendRes, nil
	}
	return models.Message{
		ID:             fmt.Sprintf("srv-%d", f.sendCalls),
		ConversationID: convID,
		Content:        content,
		Type:           msgType,
		AttachmentURL:  attachmentURL,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (f *fakeBackend) MarkAsRead(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls++
	return nil
}

func (f *fakeBackend) EditMessage(_ context.Context, _, _ string) error { return f.editErr }

func (f *fakeBackend) DeleteMessage(_ context.Context, msgID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.delCalls = append(f.delCalls, msgID)
	return nil
}

func (f *fakeBackend) ClearMessageText(_ context.Context, msgID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.clearIDs = append(f.clearIDs, msgID)
	return nil
}

func (f *fakeBackend) BulkDeleteMessages(_ context.Context, msgIDs []string, dt api.DeleteType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return 0, f.bulkErr
	}
	f.bulkIDs = append([]string(nil), msgIDs...)
	f.bulkType = dt
	if f.bulkN > len(msgIDs) {
		return len(msgIDs), nil
	}
	return f.bulkN, nil
}

func (f *fakeBackend) LeaveConversation(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves++
	return nil
}

func (f *fakeBackend) DeleteConversation(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeBackend) markCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markCalls
}

func staffSession() session.Session {
	return session.Session{UserID: "staff-1", Role: models.RoleStaff, AuthCode: "code"}
}

func studentSession() session.Session {
	return session.Session{UserID: "student-1", Role: models.RoleStudent, AuthCode: "code"}
}

func newTestEngine(t interface{ Fatalf(string, ...any) }, sess session.Session, fb *fakeBackend) *Engine {
	e, err := New("conv-1", sess, fb, nil, Options{})
	if err != nil {
		t.Fatalf("engine construction failed: %v", err)
	}
	return e
}

func serverMsg(id, sender string, role models.Role, age time.Duration) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: "conv-1",
		SenderID:       sender,
		SenderRole:     role,
		Content:        "msg " + id,
		Type:           models.TypeText,
		CreatedAt:      time.Now().UTC().Add(-age),
	}
}
