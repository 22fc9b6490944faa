// Package edusync is a typed client for the EduSync REST API. Every call
// honours context cancellation and never retries.
package edusync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// errBodyLimit bounds how much of an error body is read for its message.
const errBodyLimit = 64 << 10

// Client talks to one EduSync API deployment. It is safe for concurrent use;
// WithToken returns a copy bound to a caller's credentials.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     zerolog.Logger
}

// NewClient builds a client for baseURL, e.g. "https://localhost:7142".
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "edusync").Logger(),
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

// WithToken returns a copy that sends "Authorization: Bearer <token>".
// An empty token sends no header.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type requestIDKey struct{}

// HeaderRequestID carries the portal request id to the API.
const HeaderRequestID = "X-Request-ID"

// WithRequestID tags ctx so every call made with it forwards id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// call describes one JSON round trip.
type call struct {
	op       string
	fallback string
	method   string
	path     string
	body     any
	out      any
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return &APIError{Op: cl.op, Message: cl.fallback, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return &APIError{Op: cl.op, Message: cl.fallback, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req, cl.op, cl.fallback)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return &APIError{Op: cl.op, StatusCode: resp.StatusCode, Message: cl.fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// send executes req and turns transport failures and non-2xx answers into
// *APIError. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, op, fallback string) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID := RequestID(req.Context())
	if reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Str("url", req.URL.String()).Str("request_id", reqID).Msg("EduSync request failed")
		return nil, &APIError{Op: op, Message: fallback, Err: err}
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    messageFromBody(raw, fallback),
		Err:        fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode),
	}
	c.log.Warn().
		Str("op", op).
		Int("status", resp.StatusCode).
		Str("url", req.URL.String()).
		Str("request_id", reqID).
		Msg(apiErr.Message)
	return nil, apiErr
}
