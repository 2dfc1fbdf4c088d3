// Package gqlclient posts GraphQL documents over HTTP with a fixed retry budget.
package gqlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// Error is a response that carried GraphQL errors.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "GraphQL error: " + strings.Join(e.Messages, "; ")
}

type Client struct {
	endpoint string
	retries  int
	http     *http.Client
	backoff  func() backoff.BackOff
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithBackOff replaces the exponential backoff between attempts.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) { c.backoff = fn }
}

// New returns a client for endpoint that retries transport failures and 5xx responses up to
// retries times.
func New(endpoint string, retries int, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		retries:  max(retries, 0),
		http:     &http.Client{Timeout: 30 * time.Second},
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Do posts query with vars and returns the data member of the response. HTTP 4xx responses and
// GraphQL errors fail without retrying.
func (c *Client) Do(ctx context.Context, query string, vars map[string]any) (gjson.Result, error) {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": lo.Ternary(vars == nil, map[string]any{}, vars)})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("encode request: %w", err)
	}
	return backoff.Retry(ctx, func() (gjson.Result, error) {
		return c.post(ctx, payload)
	}, backoff.WithBackOff(c.backoff()), backoff.WithMaxTries(uint(c.retries+1)))
}

func (c *Client) post(ctx context.Context, payload []byte) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return gjson.Result{}, backoff.Permanent(err)
		}
		return gjson.Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return gjson.Result{}, fmt.Errorf("server returned %s", resp.Status)
	case resp.StatusCode >= http.StatusBadRequest:
		if msgs := errorMessages(body); len(msgs) > 0 {
			return gjson.Result{}, backoff.Permanent(&Error{Messages: msgs})
		}
		return gjson.Result{}, backoff.Permanent(fmt.Errorf("server returned %s", resp.Status))
	case !gjson.ValidBytes(body):
		return gjson.Result{}, backoff.Permanent(fmt.Errorf("invalid JSON response: %q", truncate(string(body), 80)))
	}
	if msgs := errorMessages(body); len(msgs) > 0 {
		return gjson.Result{}, backoff.Permanent(&Error{Messages: msgs})
	}
	return gjson.GetBytes(body, "data"), nil
}

func errorMessages(body []byte) []string {
	if !gjson.ValidBytes(body) {
		return nil
	}
	return lo.Map(gjson.GetBytes(body, "errors.#.message").Array(), func(r gjson.Result, _ int) string {
		return r.String()
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
