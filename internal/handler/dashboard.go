// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/worklodge/wlp-go/internal/middleware"
	"github.com/worklodge/wlp-go/internal/nav"
	"github.com/worklodge/wlp-go/internal/render"
)

// DashboardHandler covers the generic authenticated pages: the dashboard
// redirector and the account page.
type DashboardHandler struct {
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{renderer: renderer}
}

// Dashboard sorts the signed-in user into their role's section. A session
// with a role this build does not recognize gets a neutral page instead of a
// redirect loop.
func (d *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	snap := middleware.GetSnapshot(r)
	if role, ok := snap.Role(); ok {
		if home, ok := nav.Landing(role); ok {
			http.Redirect(w, r, home, http.StatusSeeOther)
			return
		}
	}

	if snap.Identity != nil {
		slog.Warn("session carries unrecognized role", "user_id", snap.Identity.ID, "role", string(snap.Identity.Role))
	}
	if err := d.renderer.Render(w, r, "app/dashboard", pageData(r, "Dashboard", nil)); err != nil {
		logAndInternalError(w, "failed to render dashboard", "error", err)
	}
}

// Account renders the signed-in user's profile as reported by the lodging API.
func (d *DashboardHandler) Account(w http.ResponseWriter, r *http.Request) {
	if err := d.renderer.Render(w, r, "app/account", pageData(r, "Account", nil)); err != nil {
		logAndInternalError(w, "failed to render account page", "error", err)
	}
}
