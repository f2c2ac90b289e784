// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api is the HTTP client for the lodging backend. It attaches the
// user's upstream session token, serializes JSON bodies, and normalizes
// error responses into a single error shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestTimeout is the per-request timeout for upstream calls.
const RequestTimeout = 30 * time.Second

// UserAgent is sent on every upstream request.
const UserAgent = "wlp-go/1.0"

// httpClient is the shared HTTP client with appropriate timeouts.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// Error is an application failure reported by the backend: a non-2xx status
// with the server-provided message, falling back to "HTTP <status>" when the
// body carries no usable message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client issues requests against the lodging backend. A Client is cheap and
// immutable; derive a per-user client with WithToken.
type Client struct {
	baseURL    string
	cookieName string
	token      string
	http       *http.Client
}

// New creates a Client for the given base URL. cookieName is the name of the
// upstream session cookie issued by POST /api/login.
func New(baseURL, cookieName string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookieName: cookieName,
		http:       httpClient,
	}
}

// WithToken returns a copy of the client that sends the given upstream
// session token with every request. An empty token means unauthenticated.
func (c *Client) WithToken(token string) *Client {
	dup := *c
	dup.token = token
	return &dup
}

// Token returns the upstream session token held by this client.
func (c *Client) Token() string { return c.token }

// CookieName returns the upstream session cookie name.
func (c *Client) CookieName() string { return c.cookieName }

// Options controls a single request.
type Options struct {
	Method string      // defaults to GET, or POST when Body is set
	Body   any         // serialized as JSON when non-nil
	Header http.Header // extra headers; Content-Type wins over the JSON default
	// NoThrow disables error translation for non-2xx statuses: the response
	// body is decoded into out as-is and no *Error is returned, so the
	// caller can branch on the payload directly.
	NoThrow bool
}

// Do issues a request to path (relative to the base URL, or absolute) and
// decodes the JSON response into out (which may be nil). Non-2xx statuses
// return *Error unless opts.NoThrow is set; transport failures return a
// wrapped error. Bodies that fail to parse as JSON are treated as empty,
// since some endpoints return empty success bodies.
func (c *Client) Do(ctx context.Context, path string, opts *Options, out any) error {
	status, body, _, err := c.roundTrip(ctx, path, opts)
	if err != nil {
		return err
	}
	return c.finish(status, body, opts, out)
}

// roundTrip performs the HTTP exchange and returns the raw status, body and
// response cookies. Used directly by Login, which needs the Set-Cookie.
func (c *Client) roundTrip(ctx context.Context, path string, opts *Options) (int, []byte, []*http.Cookie, error) {
	if opts == nil {
		opts = &Options{}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if opts.Body != nil {
			method = http.MethodPost
		}
	}

	var reqBody io.Reader
	if opts.Body != nil {
		buf, err := json.Marshal(opts.Body)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("building request: %w", err)
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Request-Id", uuid.NewString())

	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("requesting %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("reading response from %s: %w", path, err)
	}

	return resp.StatusCode, body, resp.Cookies(), nil
}

// finish applies the decode and error-normalization rules to a completed
// exchange.
func (c *Client) finish(status int, body []byte, opts *Options, out any) error {
	noThrow := opts != nil && opts.NoThrow

	if status >= 400 && !noThrow {
		return &Error{Status: status, Message: errorMessage(status, body)}
	}

	if out != nil && len(body) > 0 {
		// Tolerate non-JSON bodies: decode failures degrade to the zero
		// value rather than propagating a parse error.
		_ = json.Unmarshal(body, out)
	}
	return nil
}

// errorMessage extracts the server-provided message from an error body,
// falling back to a generic "HTTP <status>" message.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("HTTP %d", status)
}

// url resolves path against the base URL. Absolute http(s) URLs pass through.
func (c *Client) url(path string) string {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
