// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/worklodge/wlp-go/internal/cache"
	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/render"
	"github.com/worklodge/wlp-go/internal/service"
)

// AdminHandler handles the admin section: platform stats, the user table
// and role changes.
type AdminHandler struct {
	renderer     *render.Renderer
	summaries    *cache.SummaryCache
	eventService *service.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer, summaries *cache.SummaryCache) *AdminHandler {
	return &AdminHandler{
		renderer:     renderer,
		summaries:    summaries,
		eventService: service.NewEventService(db),
	}
}

// adminOverviewData is the payload for the admin overview page.
type adminOverviewData struct {
	Stats []model.Stat
}

// Overview renders the admin landing page.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	client := apiClient(r)

	stats, err := h.summaries.GetOrFetch(r.Context(), "admin", sessionUserID(r), func() ([]model.Stat, error) {
		return client.Summary(r.Context(), "admin")
	})
	if err != nil {
		slog.Error("failed to load admin summary", "error", err)
	}

	data := adminOverviewData{Stats: stats}
	if err := h.renderer.Render(w, r, "admin/overview", pageData(r, "Platform admin", data)); err != nil {
		logAndInternalError(w, "failed to render admin overview", "error", err)
	}
}

// adminUsersData is the payload for the user table page.
type adminUsersData struct {
	Users []model.UserRow
	Roles []model.Role
}

// Users renders the platform user table.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := apiClient(r).AdminUsers(r.Context())
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectAdmin, err, "failed to load users")
		return
	}

	data := adminUsersData{Users: users, Roles: model.Roles()}
	if err := h.renderer.Render(w, r, "admin/users", pageData(r, "Users", data)); err != nil {
		logAndInternalError(w, "failed to render user table", "error", err)
	}
}

// UpdateRole changes a user's role. Role changes take effect on the target
// user's next session refresh; their current page is not forced to reload.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminUsers) {
		return
	}

	id := chi.URLParam(r, "id")
	role, ok := model.ParseRole(r.FormValue("role"))
	if !ok {
		flashError(w, r, h.renderer, redirectAdminUsers, "Unknown role")
		return
	}

	if err := apiClient(r).UpdateUserRole(r.Context(), id, role); err != nil {
		flashAPIError(w, r, h.renderer, redirectAdminUsers, err, "failed to update role")
		return
	}

	adminID := sessionUserID(r)
	h.summaries.Invalidate(r.Context(), "admin", adminID)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User role changed", adminID, clientIP(r), map[string]any{
		"target_user": id,
		"new_role":    string(role),
	})

	flashSuccess(w, r, h.renderer, redirectAdminUsers, "Role updated to "+role.Label())
}
