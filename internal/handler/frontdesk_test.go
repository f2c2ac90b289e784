// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/worklodge/wlp-go/internal/api"
	"github.com/worklodge/wlp-go/internal/cache"
	"github.com/worklodge/wlp-go/internal/middleware"
	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/render"
	"github.com/worklodge/wlp-go/internal/session"
	"github.com/worklodge/wlp-go/internal/testutil"
	"github.com/worklodge/wlp-go/web"
)

func handlerTestRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	r, err := render.New(render.Config{TemplatesFS: templatesFS})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

func handlerTestSummaries(t *testing.T) *cache.SummaryCache {
	t.Helper()
	backend := cache.NewSimpleMemoryCache(0)
	t.Cleanup(func() { _ = backend.Close() })
	return cache.NewSummaryCache(backend, 0)
}

// lodgingUpstream serves /api/me for the given identity plus any extra
// routes registered on the mux.
func lodgingUpstream(t *testing.T, identity model.Identity, extra func(*http.ServeMux)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]*model.Identity{"user": &identity})
	})
	if extra != nil {
		extra(mux)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// withUpstreamStore resolves a session store against the upstream before
// each request, the way the session middleware does in the server.
func withUpstreamStore(upstreamURL string) func(http.Handler) http.Handler {
	client := api.New(upstreamURL, "wlp_session").WithToken("tok")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := session.NewStore(client)
			st.Initialize(r.Context())
			ctx := context.WithValue(r.Context(), middleware.ContextKeyStore, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDecideSendsUppercaseDecision(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	var received atomic.Value // last decision string the upstream saw
	var calls atomic.Int64
	identity := model.Identity{ID: "fd1", Email: "desk@example.com", Role: model.RoleFrontDesk}
	srv := lodgingUpstream(t, identity, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/frontdesk/requests/", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			var body struct {
				Decision string `json:"decision"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decoding decision body: %v", err)
			}
			received.Store(body.Decision)
			_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		})
	})

	h := NewFrontdeskHandler(db, handlerTestRenderer(t), handlerTestSummaries(t))
	router := chi.NewRouter()
	router.Use(withUpstreamStore(srv.URL))
	router.Post("/frontdesk/requests/{id}/decision", h.Decide)

	tests := []struct {
		form string
		want string
	}{
		{"accept", "ACCEPT"},
		{"reject", "REJECT"},
	}
	for _, tt := range tests {
		t.Run(tt.form, func(t *testing.T) {
			rec := postForm(t, router, "/frontdesk/requests/r42/decision", url.Values{"decision": {tt.form}})
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
			}
			if loc := rec.Header().Get("Location"); loc != redirectFrontdeskRequests {
				t.Errorf("redirect = %q, want %q", loc, redirectFrontdeskRequests)
			}
			if got := received.Load(); got != tt.want {
				t.Errorf("upstream received decision=%v, want %s", got, tt.want)
			}
		})
	}
}

func TestDecideRejectsUnknownValue(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	var calls atomic.Int64
	identity := model.Identity{ID: "fd1", Email: "desk@example.com", Role: model.RoleFrontDesk}
	srv := lodgingUpstream(t, identity, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/frontdesk/requests/", func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
	})

	h := NewFrontdeskHandler(db, handlerTestRenderer(t), handlerTestSummaries(t))
	router := chi.NewRouter()
	router.Use(withUpstreamStore(srv.URL))
	router.Post("/frontdesk/requests/{id}/decision", h.Decide)

	rec := postForm(t, router, "/frontdesk/requests/r42/decision", url.Values{"decision": {"ACCEPT"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if calls.Load() != 0 {
		t.Errorf("upstream calls = %d, want 0 for an unrecognized form value", calls.Load())
	}
}
