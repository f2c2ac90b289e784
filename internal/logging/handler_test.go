// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/store"
	"github.com/worklodge/wlp-go/internal/testutil"
)

func newTestHandler(t *testing.T) (*EventLogHandler, *store.Queries) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewEventLogHandler(inner, db), store.New(db)
}

func TestWarnAndAboveReachTheEventLog(t *testing.T) {
	h, q := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("just info")
	logger.Warn("cache backend degraded")
	logger.Error("upstream request failed", "path", "/api/me")

	events, err := q.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (info must not be stored)", len(events))
	}

	byMessage := map[string]model.Event{}
	for _, ev := range events {
		byMessage[ev.Message] = ev
	}
	if ev := byMessage["cache backend degraded"]; ev.Level != model.EventLevelWarning {
		t.Errorf("warn level = %q", ev.Level)
	}
	if ev := byMessage["upstream request failed"]; ev.Level != model.EventLevelError {
		t.Errorf("error level = %q", ev.Level)
	}
}

func TestCategoryExtraction(t *testing.T) {
	h, q := newTestHandler(t)
	logger := slog.New(h)

	tests := []struct {
		message string
		attrs   []any
		want    string
	}{
		{"explicit wins", []any{"category", "auth"}, model.EventCategoryAuth},
		{"login rate limited", nil, model.EventCategoryAuth},
		{"guard evaluated against unresolved session", nil, model.EventCategoryGuard},
		{"worker import rejected", nil, model.EventCategoryLodging},
		{"cache backend degraded", nil, model.EventCategoryCache},
		{"disk almost full", nil, model.EventCategorySystem},
	}

	for _, tt := range tests {
		logger.Warn(tt.message, tt.attrs...)
	}

	events, err := q.ListRecentEvents(context.Background(), int64(len(tests)))
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	byMessage := map[string]string{}
	for _, ev := range events {
		byMessage[ev.Message] = ev.Category
	}
	for _, tt := range tests {
		if got := byMessage[tt.message]; got != tt.want {
			t.Errorf("category(%q) = %q, want %q", tt.message, got, tt.want)
		}
	}
}

func TestMetadataSerialization(t *testing.T) {
	h, q := newTestHandler(t)
	logger := slog.New(h)

	logger.Warn("worker import rejected", "category", "lodging", "file", `ros"ter.csv`, "rows", 12)

	events, err := q.ListRecentEvents(context.Background(), 1)
	if err != nil || len(events) != 1 {
		t.Fatalf("events=%d err=%v", len(events), err)
	}
	meta := events[0].Metadata
	if meta == "{}" {
		t.Fatal("metadata dropped")
	}
	// category goes into its own column, not the metadata blob
	if strings.Contains(meta, `"category"`) {
		t.Errorf("metadata %q should not repeat the category", meta)
	}
	if !strings.Contains(meta, `"file":"ros\"ter.csv"`) {
		t.Errorf("metadata %q missing escaped file attr", meta)
	}
	if !strings.Contains(meta, `"rows":"12"`) {
		t.Errorf("metadata %q missing rows attr", meta)
	}
}

func TestWithAttrsKeepsEventLog(t *testing.T) {
	h, q := newTestHandler(t)
	logger := slog.New(h).With("request_id", "r1")

	logger.Error("upstream request failed")

	events, err := q.ListRecentEvents(context.Background(), 1)
	if err != nil || len(events) != 1 {
		t.Fatalf("events=%d err=%v (derived handler must still write events)", len(events), err)
	}
}
