package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classline/pkg/models"
)

type capturedRequest struct {
	Method   string
	Path     string
	RawQuery string
	AuthCode string
	Body     []byte
}

// newTestServer spins up a backend that records the request and replies
// with the given status and JSON body.
func newTestServer(t *testing.T, status int, respBody string) (*Client, *capturedRequest) {
	t.Helper()
	cap := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.Method = r.Method
		cap.Path = r.URL.Path
		cap.RawQuery = r.URL.RawQuery
		cap.AuthCode = r.Header.Get("X-Auth-Code")
		var buf [4096]byte
		n, _ := r.Body.Read(buf[:])
		cap.Body = append([]byte(nil), buf[:n]...)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "code-123"), cap
}

func TestGetMessagesDecodesPage(t *testing.T) {
	body := `{
		"messages": [
			{"id": "m2", "conversation_id": "c1", "sender_id": "u1", "sender_role": "staff", "content": "newer", "type": "text", "created_at": "2026-08-25T10:01:00Z"},
			{"id": "m1", "conversation_id": "c1", "sender_id": "u2", "sender_role": "student", "content": "older", "type": "text", "created_at": "2026-08-25T10:00:00Z"}
		],
		"pagination": {"has_more": true}
	}`
	c, cap := newTestServer(t, http.StatusOK, body)

	page, err := c.GetMessages(context.Background(), "c1", 2, 50)
	if err != nil {
		t.Fatalf("get messages failed: %v", err)
	}
	if cap.Method != "GET" || cap.Path != "/v1/conversations/c1/messages" {
		t.Fatalf("unexpected request: %s %s", cap.Method, cap.Path)
	}
	if cap.RawQuery != "page=2&page_size=50" {
		t.Fatalf("unexpected query: %s", cap.RawQuery)
	}
	if cap.AuthCode != "code-123" {
		t.Fatalf("auth code header missing, got %q", cap.AuthCode)
	}
	if len(page.Messages) != 2 || !page.HasMore {
		t.Fatalf("bad page: %d messages, has_more=%v", len(page.Messages), page.HasMore)
	}
	if page.Messages[0].ID != "m2" || page.Messages[0].SenderRole != models.RoleStaff {
		t.Fatalf("decoded message wrong: %+v", page.Messages[0])
	}
}

func TestSendMessagePostsAndDecodesConfirmed(t *testing.T) {
	body := `{"message": {"id": "srv-9", "conversation_id": "c1", "content": "hello", "type": "text", "created_at": "2026-08-25T10:00:00Z"}}`
	c, cap := newTestServer(t, http.StatusCreated, body)

	msg, err := c.SendMessage(context.Background(), "c1", "hello", models.TypeText, "")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if cap.Method != "POST" || cap.Path != "/v1/conversations/c1/messages" {
		t.Fatalf("unexpected request: %s %s", cap.Method, cap.Path)
	}
	var sent map[string]any
	if err := json.Unmarshal(cap.Body, &sent); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}
	if sent["content"] != "hello" || sent["type"] != "text" {
		t.Fatalf("unexpected body: %v", sent)
	}
	if _, ok := sent["attachment_url"]; ok {
		t.Fatalf("empty attachment_url must be omitted")
	}
	if msg.ID != "srv-9" {
		t.Fatalf("expected confirmed id, got %q", msg.ID)
	}
}

func TestSendAttachmentIncludesURL(t *testing.T) {
	c, cap := newTestServer(t, http.StatusCreated, `{"message": {"id": "srv-1"}}`)

	if _, err := c.SendMessage(context.Background(), "c1", "see photo", models.TypeAttachment, "https://cdn/img.png"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	var sent map[string]any
	if err := json.Unmarshal(cap.Body, &sent); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}
	if sent["attachment_url"] != "https://cdn/img.png" || sent["type"] != "attachment" {
		t.Fatalf("unexpected body: %v", sent)
	}
}

func TestDeleteMessageCarriesConversationID(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{}`)

	if err := c.DeleteMessage(context.Background(), "m1", "c1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if cap.Method != "DELETE" || cap.Path != "/v1/messages/m1" {
		t.Fatalf("unexpected request: %s %s", cap.Method, cap.Path)
	}
	if cap.RawQuery != "conversation_id=c1" {
		t.Fatalf("conversation_id query missing: %s", cap.RawQuery)
	}
}

func TestBulkDeleteReportsPartialSuccess(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{"successful_deletes": 3}`)

	n, err := c.BulkDeleteMessages(context.Background(), []string{"m1", "m2", "m3", "m4", "m5"}, DeleteHard)
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 successful deletes, got %d", n)
	}
	var req bulkDeleteRequest
	if err := json.Unmarshal(cap.Body, &req); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}
	if len(req.MessageIDs) != 5 || req.DeleteType != DeleteHard {
		t.Fatalf("unexpected body: %+v", req)
	}
}

func TestClearAndReadEndpoints(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{}`)

	if err := c.ClearMessageText(context.Background(), "m1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if cap.Method != "POST" || cap.Path != "/v1/messages/m1/clear" {
		t.Fatalf("unexpected request: %s %s", cap.Method, cap.Path)
	}

	if err := c.MarkAsRead(context.Background(), "c1"); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if cap.Method != "POST" || cap.Path != "/v1/conversations/c1/read" {
		t.Fatalf("unexpected request: %s %s", cap.Method, cap.Path)
	}
}

func TestEditMessageUsesPatch(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{}`)

	if err := c.EditMessage(context.Background(), "m1", "fixed typo"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if cap.Method != "PATCH" || cap.Path != "/v1/messages/m1" {
		t.Fatalf("unexpected request: %s %s", cap.Method, cap.Path)
	}
	var sent map[string]string
	if err := json.Unmarshal(cap.Body, &sent); err != nil {
		t.Fatalf("request body not JSON: %v", err)
	}
	if sent["content"] != "fixed typo" {
		t.Fatalf("unexpected body: %v", sent)
	}
}

func TestNonSuccessStatusIsError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusForbidden, `{"error": "not allowed"}`)

	err := c.MarkAsRead(context.Background(), "c1")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", se.Status)
	}
}

func TestCancelledContextShortCircuits(t *testing.T) {
	c, cap := newTestServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.MarkAsRead(ctx, "c1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if cap.Method != "" {
		t.Fatalf("cancelled request reached the server")
	}
}

func TestTimeoutBoundsSlowBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, "code", WithTimeout(50*time.Millisecond))
	start := time.Now()
	err := c.MarkAsRead(context.Background(), "c1")
	if err == nil {
		t.Fatalf("expected a deadline error")
	}
	if time.Since(start) > 250*time.Millisecond {
		t.Fatalf("timeout did not bound the request")
	}
}
