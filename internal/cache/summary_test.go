// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/worklodge/wlp-go/internal/model"
)

func TestSummaryCacheGetOrFetch(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	sc := NewSummaryCache(backend, 0)
	ctx := context.Background()

	calls := 0
	fetch := func() ([]model.Stat, error) {
		calls++
		return []model.Stat{{Label: "Open requests", Value: "4"}}, nil
	}

	for i := 0; i < 2; i++ {
		stats, err := sc.GetOrFetch(ctx, "employer", "u1", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if len(stats) != 1 || stats[0].Value != "4" {
			t.Fatalf("stats = %+v", stats)
		}
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1", calls)
	}
}

func TestSummaryCacheScopesByUserAndSection(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	sc := NewSummaryCache(backend, 0)
	ctx := context.Background()

	fetchFor := func(v string) func() ([]model.Stat, error) {
		return func() ([]model.Stat, error) {
			return []model.Stat{{Label: "x", Value: v}}, nil
		}
	}

	a, _ := sc.GetOrFetch(ctx, "employer", "u1", fetchFor("1"))
	b, _ := sc.GetOrFetch(ctx, "employer", "u2", fetchFor("2"))
	c, _ := sc.GetOrFetch(ctx, "admin", "u1", fetchFor("3"))

	if a[0].Value != "1" || b[0].Value != "2" || c[0].Value != "3" {
		t.Errorf("cross-scope collision: %q %q %q", a[0].Value, b[0].Value, c[0].Value)
	}
}

func TestSummaryCacheInvalidate(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	sc := NewSummaryCache(backend, 0)
	ctx := context.Background()

	calls := 0
	fetch := func() ([]model.Stat, error) {
		calls++
		return nil, nil
	}

	_, _ = sc.GetOrFetch(ctx, "frontdesk", "u1", fetch)
	sc.Invalidate(ctx, "frontdesk", "u1")
	_, _ = sc.GetOrFetch(ctx, "frontdesk", "u1", fetch)

	if calls != 2 {
		t.Errorf("fetch ran %d times, want 2 after invalidation", calls)
	}
}

func TestSummaryCacheFetchErrorPassesThrough(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	sc := NewSummaryCache(backend, 0)

	boom := errors.New("upstream down")
	_, err := sc.GetOrFetch(context.Background(), "employer", "u1", func() ([]model.Stat, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want passthrough", err)
	}
}

func TestSummaryCacheHonorsConfiguredTTL(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	sc := NewSummaryCache(backend, 10*time.Millisecond)
	ctx := context.Background()

	calls := 0
	fetch := func() ([]model.Stat, error) {
		calls++
		return []model.Stat{{Label: "Open requests", Value: "4"}}, nil
	}

	if _, err := sc.GetOrFetch(ctx, "employer", "u1", fetch); err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := sc.GetOrFetch(ctx, "employer", "u1", fetch); err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch ran %d times, want 2 after the entry expired", calls)
	}
}
