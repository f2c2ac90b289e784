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

// FrontdeskHandler handles the front-desk section: the incoming request
// queue and accept/reject decisions.
type FrontdeskHandler struct {
	renderer     *render.Renderer
	summaries    *cache.SummaryCache
	eventService *service.EventService
}

// NewFrontdeskHandler creates a new FrontdeskHandler.
func NewFrontdeskHandler(db *sql.DB, renderer *render.Renderer, summaries *cache.SummaryCache) *FrontdeskHandler {
	return &FrontdeskHandler{
		renderer:     renderer,
		summaries:    summaries,
		eventService: service.NewEventService(db),
	}
}

// frontdeskOverviewData is the payload for the front-desk overview page.
type frontdeskOverviewData struct {
	Stats   []model.Stat
	Pending []model.RoomRequest
}

// Overview renders the front-desk landing page.
func (h *FrontdeskHandler) Overview(w http.ResponseWriter, r *http.Request) {
	client := apiClient(r)

	stats, err := h.summaries.GetOrFetch(r.Context(), "frontdesk", sessionUserID(r), func() ([]model.Stat, error) {
		return client.Summary(r.Context(), "frontdesk")
	})
	if err != nil {
		slog.Error("failed to load frontdesk summary", "error", err)
	}

	pending, err := client.FrontdeskRequests(r.Context())
	if err != nil {
		slog.Error("failed to load pending requests", "error", err)
	}
	if len(pending) > 5 {
		pending = pending[:5]
	}

	data := frontdeskOverviewData{Stats: stats, Pending: pending}
	if err := h.renderer.Render(w, r, "frontdesk/overview", pageData(r, "Front desk", data)); err != nil {
		logAndInternalError(w, "failed to render frontdesk overview", "error", err)
	}
}

// frontdeskRequestsData is the payload for the decision queue page.
type frontdeskRequestsData struct {
	Requests []model.RoomRequest
}

// Requests renders the queue of requests awaiting a decision.
func (h *FrontdeskHandler) Requests(w http.ResponseWriter, r *http.Request) {
	requests, err := apiClient(r).FrontdeskRequests(r.Context())
	if err != nil {
		flashAPIError(w, r, h.renderer, redirectFrontdesk, err, "failed to load decision queue")
		return
	}

	data := frontdeskRequestsData{Requests: requests}
	if err := h.renderer.Render(w, r, "frontdesk/requests", pageData(r, "Incoming requests", data)); err != nil {
		logAndInternalError(w, "failed to render decision queue", "error", err)
	}
}

// Decide records an accept or reject decision on a pending request.
func (h *FrontdeskHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectFrontdeskRequests) {
		return
	}

	id := chi.URLParam(r, "id")
	var decision string
	switch r.FormValue("decision") {
	case "accept":
		decision = model.DecisionAccept
	case "reject":
		decision = model.DecisionReject
	default:
		flashError(w, r, h.renderer, redirectFrontdeskRequests, "Decision must be accept or reject")
		return
	}

	if err := apiClient(r).DecideRequest(r.Context(), id, decision); err != nil {
		flashAPIError(w, r, h.renderer, redirectFrontdeskRequests, err, "failed to record decision")
		return
	}

	userID := sessionUserID(r)
	h.summaries.Invalidate(r.Context(), "frontdesk", userID)
	_ = h.eventService.LogLodgingEvent(r.Context(), model.EventLevelInfo, "Request decision recorded", userID, clientIP(r), map[string]any{
		"request_id": id,
		"decision":   decision,
	})

	if decision == model.DecisionAccept {
		flashSuccess(w, r, h.renderer, redirectFrontdeskRequests, "Request accepted")
	} else {
		flashSuccess(w, r, h.renderer, redirectFrontdeskRequests, "Request rejected")
	}
}
