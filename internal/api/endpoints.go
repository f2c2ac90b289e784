// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/worklodge/wlp-go/internal/model"
)

// Me probes the current session. A nil identity with a nil error means the
// backend reports no authenticated session; any transport or application
// failure is returned as-is so the caller can decide how to degrade.
func (c *Client) Me(ctx context.Context) (*model.Identity, error) {
	var resp struct {
		User *model.Identity `json:"user"`
	}
	if err := c.Do(ctx, "/api/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login authenticates against the backend and returns the upstream session
// token from the Set-Cookie response header. An empty token with a nil error
// means the backend accepted the credentials but issued no session cookie.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	opts := &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	}
	status, body, cookies, err := c.roundTrip(ctx, "/api/login", opts)
	if err != nil {
		return "", err
	}
	if err := c.finish(status, body, opts, nil); err != nil {
		return "", err
	}
	for _, ck := range cookies {
		if ck.Name == c.cookieName {
			return ck.Value, nil
		}
	}
	return "", nil
}

// SignupParams is the payload for account creation. AdminCode is required by
// the backend only when the requested role is ADMIN.
type SignupParams struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      model.Role `json:"role"`
	AdminCode string     `json:"adminCode,omitempty"`
}

// Signup creates an account. Like Login it returns the upstream session
// token when the backend signs the new user in immediately; an empty token
// means the account needs a separate sign-in (e.g. email confirmation).
func (c *Client) Signup(ctx context.Context, p SignupParams) (string, error) {
	opts := &Options{Method: http.MethodPost, Body: p}
	status, body, cookies, err := c.roundTrip(ctx, "/api/signup", opts)
	if err != nil {
		return "", err
	}
	if err := c.finish(status, body, opts, nil); err != nil {
		return "", err
	}
	for _, ck := range cookies {
		if ck.Name == c.cookieName {
			return ck.Value, nil
		}
	}
	return "", nil
}

// Logout clears the upstream session.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, "/api/logout", &Options{Method: http.MethodPost}, nil)
}

// ForgotPassword asks the backend to send a password reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.Do(ctx, "/api/password/forgot", &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email},
	}, nil)
}

// ResetPassword sets a new password using a reset token from the email link.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.Do(ctx, "/api/password/reset", &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"token": token, "password": password},
	}, nil)
}

// Summary fetches the per-role dashboard stats, e.g. "/api/employer/summary".
func (c *Client) Summary(ctx context.Context, section string) ([]model.Stat, error) {
	var resp struct {
		Stats []model.Stat `json:"stats"`
	}
	if err := c.Do(ctx, "/api/"+section+"/summary", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// Hotels lists the partner hotels offered on the new-request form.
func (c *Client) Hotels(ctx context.Context) ([]model.Hotel, error) {
	var resp struct {
		Items []model.Hotel `json:"items"`
	}
	if err := c.Do(ctx, "/api/hotels", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// EmployerRequests lists the employer's room requests.
func (c *Client) EmployerRequests(ctx context.Context) ([]model.RoomRequest, error) {
	var resp struct {
		Items []model.RoomRequest `json:"items"`
	}
	if err := c.Do(ctx, "/api/employer/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// EmployerRequest fetches one room request by ID.
func (c *Client) EmployerRequest(ctx context.Context, id string) (model.RoomRequest, error) {
	var req model.RoomRequest
	err := c.Do(ctx, "/api/employer/requests/"+url.PathEscape(id), nil, &req)
	return req, err
}

// CreateRoomRequest submits a new room request.
func (c *Client) CreateRoomRequest(ctx context.Context, req model.RoomRequest) error {
	return c.Do(ctx, "/api/employer/requests", &Options{Method: http.MethodPost, Body: req}, nil)
}

// WorkerFilter narrows the roster listing.
type WorkerFilter struct {
	Query   string // name or phone substring
	HotelID string
	Status  string
	Start   string // check-in range, YYYY-MM-DD
	End     string
}

func (f WorkerFilter) query() string {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.HotelID != "" {
		q.Set("hotel_id", f.HotelID)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Start != "" {
		q.Set("start", f.Start)
	}
	if f.End != "" {
		q.Set("end", f.End)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// WorkersResponse is the roster with its bucket summary.
type WorkersResponse struct {
	Hotels  []model.Hotel       `json:"hotels"`
	Buckets model.WorkerBuckets `json:"buckets"`
	Workers []model.Worker      `json:"workers"`
}

// EmployerWorkers fetches the worker roster with buckets and filters applied.
func (c *Client) EmployerWorkers(ctx context.Context, f WorkerFilter) (WorkersResponse, error) {
	var resp WorkersResponse
	err := c.Do(ctx, "/api/employer/workers"+f.query(), nil, &resp)
	return resp, err
}

// AddWorkers adds workers to the roster (single add or bulk CSV import).
func (c *Client) AddWorkers(ctx context.Context, workers []model.NewWorker) error {
	return c.Do(ctx, "/api/employer/workers/bulk", &Options{
		Method: http.MethodPost,
		Body:   map[string]any{"workers": workers},
	}, nil)
}

// FrontdeskRequests lists requests pending a front-desk decision.
func (c *Client) FrontdeskRequests(ctx context.Context) ([]model.RoomRequest, error) {
	var resp struct {
		Items []model.RoomRequest `json:"items"`
	}
	if err := c.Do(ctx, "/api/frontdesk/requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// DecideRequest records an accept/reject decision on a pending request.
func (c *Client) DecideRequest(ctx context.Context, id, decision string) error {
	return c.Do(ctx, "/api/frontdesk/requests/"+url.PathEscape(id)+"/decision", &Options{
		Method: http.MethodPost,
		Body:   map[string]string{"decision": decision},
	}, nil)
}

// AdminUsers lists all platform users.
func (c *Client) AdminUsers(ctx context.Context) ([]model.UserRow, error) {
	var resp struct {
		Items []model.UserRow `json:"items"`
	}
	if err := c.Do(ctx, "/api/admin/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// UpdateUserRole changes a user's role.
func (c *Client) UpdateUserRole(ctx context.Context, id string, role model.Role) error {
	return c.Do(ctx, "/api/admin/users/"+url.PathEscape(id)+"/role", &Options{
		Method: http.MethodPatch,
		Body:   map[string]model.Role{"role": role},
	}, nil)
}
