// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklodge/wlp-go/internal/model"
)

const testCookie = "wlp_session"

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"json error body", http.StatusNotFound, `{"error":"not found"}`, "not found"},
		{"unparseable body", http.StatusInternalServerError, `<html>boom</html>`, "HTTP 500"},
		{"empty body", http.StatusBadGateway, ``, "HTTP 502"},
		{"json without error field", http.StatusForbidden, `{"detail":"nope"}`, "HTTP 403"},
		{"empty error field", http.StatusConflict, `{"error":""}`, "HTTP 409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, testCookie)
			err := c.Do(context.Background(), "/api/anything", nil, nil)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantMessage, apiErr.Error())
		})
	}
}

func TestDoSendsTokenAndHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testCookie).WithToken("tok123")
	require.NoError(t, c.Do(context.Background(), "/api/me", nil, nil))

	ck, err := got.Cookie(testCookie)
	require.NoError(t, err)
	assert.Equal(t, "tok123", ck.Value)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, UserAgent, got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get("X-Request-Id"))
}

func TestDoOmitsCookieWithoutToken(t *testing.T) {
	var cookies []*http.Cookie
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies = r.Cookies()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, testCookie).Do(context.Background(), "/api/me", nil, nil))
	assert.Empty(t, cookies)
}

func TestDoPostsJSONBody(t *testing.T) {
	var method, contentType string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testCookie)
	err := c.Do(context.Background(), "/api/thing", &Options{Body: map[string]string{"a": "b"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "b", payload["a"])
}

func TestDoNoThrow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"bad email"}`))
	}))
	defer srv.Close()

	var out struct {
		Error string `json:"error"`
	}
	err := New(srv.URL, testCookie).Do(context.Background(), "/api/signup", &Options{NoThrow: true}, &out)
	require.NoError(t, err)
	assert.Equal(t, "bad email", out.Error)
}

func TestDoToleratesNonJSONSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var out map[string]any
	assert.NoError(t, New(srv.URL, testCookie).Do(context.Background(), "/api/logout", nil, &out))
}

func TestURLResolution(t *testing.T) {
	c := New("https://api.worklodge.example/", testCookie)

	tests := []struct {
		path string
		want string
	}{
		{"/api/me", "https://api.worklodge.example/api/me"},
		{"api/me", "https://api.worklodge.example/api/me"},
		{"https://other.example/x", "https://other.example/x"},
		{"HTTP://other.example/x", "HTTP://other.example/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.url(tt.path), "path %q", tt.path)
	}
}

func TestLoginExtractsSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds["password"] != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: testCookie, Value: "issued-token"})
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testCookie)

	token, err := c.Login(context.Background(), "e@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)

	_, err = c.Login(context.Background(), "e@example.com", "wrong")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestLoginWithoutCookieReturnsEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	token, err := New(srv.URL, testCookie).Login(context.Background(), "e@example.com", "pw")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(testCookie); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"not signed in"}`))
			return
		}
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"e@example.com","role":"FRONTDESK"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testCookie)

	_, err := c.Me(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	identity, err := c.WithToken("tok").Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "u1", identity.ID)
	assert.Equal(t, model.RoleFrontDesk, identity.Role)
}

func TestWorkerFilterQuery(t *testing.T) {
	assert.Equal(t, "", WorkerFilter{}.query())

	f := WorkerFilter{Query: "ana maria", HotelID: "h1", Status: "In-house"}
	q := f.query()
	assert.Contains(t, q, "q=ana+maria")
	assert.Contains(t, q, "hotel_id=h1")
	assert.Contains(t, q, "status=In-house")
	assert.True(t, q[0] == '?')
}
