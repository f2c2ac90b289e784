// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/worklodge/wlp-go/internal/middleware"
	"github.com/worklodge/wlp-go/internal/nav"
	"github.com/worklodge/wlp-go/internal/render"
)

// pageData assembles the common template data for a request: title, page
// payload, and the signed-in user with their navigation menu.
func pageData(r *http.Request, title string, data any) render.TemplateData {
	snap := middleware.GetSnapshot(r)
	td := render.TemplateData{
		Title:       title,
		Data:        data,
		CurrentPath: r.URL.Path,
	}
	if snap.Authenticated() {
		td.User = snap.Identity
		td.Nav = nav.Links(snap, r.URL.Path)
	}
	return td
}

// clientIP returns the request's client IP. chi's RealIP middleware has
// already resolved proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// formatDuration renders a lockout duration for user-facing messages.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "less than a minute"
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) - h*60
	if m == 0 {
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d hours %d minutes", h, m)
}
