// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"io/fs"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/web"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	r, err := New(Config{TemplatesFS: templatesFS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestAllPageTemplatesParse(t *testing.T) {
	r := testRenderer(t)

	want := []string{
		"auth/login", "auth/signup", "auth/forgot_password", "auth/update_password",
		"site/home",
		"app/dashboard", "app/account",
		"employer/overview", "employer/requests", "employer/request_new",
		"employer/request_details", "employer/workers",
		"frontdesk/overview", "frontdesk/requests",
		"admin/overview", "admin/users",
	}
	for _, name := range want {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("template %q not parsed", name)
		}
	}
}

func TestRenderAuthPage(t *testing.T) {
	r := testRenderer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/login", nil)
	err := r.Render(rr, req, "auth/login", TemplateData{
		Title: "Sign in",
		Data:  map[string]string{"Next": "/employer/workers"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "<title>Sign in — WorkLodge</title>") {
		t.Error("missing page title")
	}
	if !strings.Contains(body, `name="next"`) {
		t.Error("missing next field")
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestRenderAppPageShowsNavAndUser(t *testing.T) {
	r := testRenderer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/account", nil)
	err := r.Render(rr, req, "app/account", TemplateData{
		Title: "Account",
		User:  &model.Identity{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: model.RoleEmployer},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "ana@example.com") {
		t.Error("missing account email")
	}
	if !strings.Contains(body, "Sign out") {
		t.Error("signed-in topnav missing sign-out control")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := testRenderer(t)
	rr := httptest.NewRecorder()
	if err := r.Render(rr, httptest.NewRequest("GET", "/", nil), "nope/nope", TemplateData{}); err == nil {
		t.Error("want error for unknown template")
	}
}

func TestTemplateFuncs(t *testing.T) {
	r := testRenderer(t)
	funcs := r.templateFuncs()

	if got := funcs["formatDate"].(func(time.Time) string)(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)); got != "Mar 1, 2026" {
		t.Errorf("formatDate = %q", got)
	}
	if got := funcs["truncate"].(func(string, int) string)("abcdef", 4); got != "abcd..." {
		t.Errorf("truncate = %q", got)
	}
	if got := funcs["truncate"].(func(string, int) string)("abc", 4); got != "abc" {
		t.Errorf("truncate short = %q", got)
	}
	if got := funcs["title"].(func(string) string)("fRONT"); got != "Front" {
		t.Errorf("title = %q", got)
	}
}
