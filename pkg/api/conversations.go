package api

import (
	"context"
	"fmt"
	"net/url"

	"classline/pkg/models"
)

// DeleteType selects the bulk erasure behavior.
type DeleteType string

const (
	DeleteHard DeleteType = "hard"
	DeleteSoft DeleteType = "soft"
)

type messagesResponse struct {
	Messages   []models.Message `json:"messages"`
	Pagination struct {
		HasMore bool `json:"has_more"`
	} `json:"pagination"`
}

type sendResponse struct {
	Message models.Message `json:"message"`
}

type bulkDeleteRequest struct {
	MessageIDs []string   `json:"message_ids"`
	DeleteType DeleteType `json:"delete_type"`
}

type bulkDeleteResponse struct {
	SuccessfulDeletes int `json:"successful_deletes"`
}

// GetMessages fetches one page of a conversation, newest first.
func (c *Client) GetMessages(ctx context.Context, convID string, page, pageSize int) (models.Page, error) {
	path := fmt.Sprintf("/v1/conversations/%s/messages?page=%d&page_size=%d",
		url.PathEscape(convID), page, pageSize)
	var res messagesResponse
	if err := c.do(ctx, "GET", path, nil, &res); err != nil {
		return models.Page{}, err
	}
	return models.Page{Messages: res.Messages, HasMore: res.Pagination.HasMore}, nil
}

// SendMessage posts a new message and returns the server-confirmed copy.
func (c *Client) SendMessage(ctx context.Context, convID, content string, msgType models.MessageType, attachmentURL string) (models.Message, error) {
	body := map[string]any{"content": content, "type": msgType}
	if attachmentURL != "" {
		body["attachment_url"] = attachmentURL
	}
	var res sendResponse
	path := fmt.Sprintf("/v1/conversations/%s/messages", url.PathEscape(convID))
	if err := c.do(ctx, "POST", path, body, &res); err != nil {
		return models.Message{}, err
	}
	return res.Message, nil
}

// MarkAsRead advances the caller's last-read marker for the conversation.
func (c *Client) MarkAsRead(ctx context.Context, convID string) error {
	path := fmt.Sprintf("/v1/conversations/%s/read", url.PathEscape(convID))
	return c.do(ctx, "POST", path, nil, nil)
}

// EditMessage replaces a message's content.
func (c *Client) EditMessage(ctx context.Context, msgID, newContent string) error {
	path := fmt.Sprintf("/v1/messages/%s", url.PathEscape(msgID))
	return c.do(ctx, "PATCH", path, map[string]string{"content": newContent}, nil)
}

// DeleteMessage removes a message entirely (hard delete).
func (c *Client) DeleteMessage(ctx context.Context, msgID, convID string) error {
	path := fmt.Sprintf("/v1/messages/%s?conversation_id=%s",
		url.PathEscape(msgID), url.QueryEscape(convID))
	return c.do(ctx, "DELETE", path, nil, nil)
}

// ClearMessageText soft-clears a message's content server-side.
func (c *Client) ClearMessageText(ctx context.Context, msgID string) error {
	path := fmt.Sprintf("/v1/messages/%s/clear", url.PathEscape(msgID))
	return c.do(ctx, "POST", path, nil, nil)
}

// BulkDeleteMessages erases a batch with a uniform policy and returns
// how many the backend actually erased (may be fewer than requested).
func (c *Client) BulkDeleteMessages(ctx context.Context, msgIDs []string, dt DeleteType) (int, error) {
	var res bulkDeleteResponse
	if err := c.do(ctx, "POST", "/v1/messages/bulk-delete", bulkDeleteRequest{MessageIDs: msgIDs, DeleteType: dt}, &res); err != nil {
		return 0, err
	}
	return res.SuccessfulDeletes, nil
}

// LeaveConversation removes the caller from the participant set.
func (c *Client) LeaveConversation(ctx context.Context, convID string) error {
	path := fmt.Sprintf("/v1/conversations/%s/leave", url.PathEscape(convID))
	return c.do(ctx, "POST", path, nil, nil)
}

// DeleteConversation deletes the whole conversation.
func (c *Client) DeleteConversation(ctx context.Context, convID string) error {
	path := fmt.Sprintf("/v1/conversations/%s", url.PathEscape(convID))
	return c.do(ctx, "DELETE", path, nil, nil)
}
