// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/yuin/goldmark"

	"github.com/worklodge/wlp-go/internal/render"
)

// HomeHandler serves the public landing page. Its marketing copy lives in an
// embedded markdown file so the text can change without touching templates.
type HomeHandler struct {
	renderer  *render.Renderer
	contentFS fs.FS

	once sync.Once
	body template.HTML
}

// NewHomeHandler creates a new HomeHandler. contentFS must contain home.md.
func NewHomeHandler(renderer *render.Renderer, contentFS fs.FS) *HomeHandler {
	return &HomeHandler{
		renderer:  renderer,
		contentFS: contentFS,
	}
}

// homeData is the payload for the landing page.
type homeData struct {
	Content template.HTML
}

// Home renders the landing page.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		raw, err := fs.ReadFile(h.contentFS, "home.md")
		if err != nil {
			return
		}
		var buf bytes.Buffer
		if err := goldmark.Convert(raw, &buf); err != nil {
			return
		}
		h.body = template.HTML(buf.String()) //nolint:gosec // trusted embedded markdown
	})

	data := homeData{Content: h.body}
	if err := h.renderer.Render(w, r, "site/home", pageData(r, "Worker lodging, sorted", data)); err != nil {
		logAndInternalError(w, "failed to render home page", "error", err)
	}
}
