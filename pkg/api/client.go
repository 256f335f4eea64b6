// Package api is the REST client for the school-management backend.
// Every conversation operation the engine performs goes through here;
// there is no streaming channel, only request/response.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"classline/pkg/logger"
)

// DefaultTimeout bounds every request. The upstream contract does not
// specify a timeout, so 15s is chosen here; an earlier context deadline
// wins when present.
const DefaultTimeout = 15 * time.Second

type Client struct {
	base     string
	authCode string
	timeout  time.Duration
	hc       *fasthttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the given base URL and auth code.
func New(baseURL, authCode string, opts ...Option) *Client {
	c := &Client{
		base:     strings.TrimRight(baseURL, "/"),
		authCode: authCode,
		timeout:  DefaultTimeout,
		hc:       &fasthttp.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// do issues one request and decodes the JSON response into out (when
// non-nil). The deadline is the earlier of the context deadline and the
// client timeout.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := fasthttp.AcquireRequest()
	res := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(res)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set("X-Auth-Code", c.authCode)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.hc.DoDeadline(req, res, deadline); err != nil {
		logger.Debug("api_request_failed", "method", method, "path", path, "error", err)
		return err
	}
	status := res.StatusCode()
	if status < 200 || status >= 300 {
		return &StatusError{Status: status, Body: string(res.Body())}
	}
	if out != nil && len(res.Body()) > 0 {
		if err := json.Unmarshal(res.Body(), out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
