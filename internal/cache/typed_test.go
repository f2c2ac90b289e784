// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type page struct {
	Title string `json:"title"`
	Views int    `json:"views"`
}

func TestTypedCacheRoundTrip(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	tc := NewTypedCache[page](backend, time.Minute)
	ctx := context.Background()

	if _, ok := tc.Get(ctx, "p1"); ok {
		t.Fatal("empty cache reported a hit")
	}

	in := &page{Title: "Dashboard", Views: 7}
	if err := tc.Set(ctx, "p1", in); err != nil {
		t.Fatalf("Set: %v", err)
	}

	out, ok := tc.Get(ctx, "p1")
	if !ok || out.Title != "Dashboard" || out.Views != 7 {
		t.Errorf("Get = (%+v, %v)", out, ok)
	}

	if !tc.Has(ctx, "p1") {
		t.Error("Has = false after Set")
	}
	if err := tc.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if tc.Has(ctx, "p1") {
		t.Error("Has = true after Delete")
	}
}

func TestTypedCacheCorruptEntryIsAMiss(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	tc := NewTypedCache[page](backend, time.Minute)
	ctx := context.Background()

	_ = backend.Set(ctx, "p1", []byte("not json"), 0)
	if _, ok := tc.Get(ctx, "p1"); ok {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestTypedCacheGetOrSet(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	tc := NewTypedCache[page](backend, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func() (*page, error) {
		calls++
		return &page{Title: "Loaded"}, nil
	}

	for i := 0; i < 3; i++ {
		out, err := tc.GetOrSet(ctx, "p1", load)
		if err != nil || out.Title != "Loaded" {
			t.Fatalf("GetOrSet #%d = (%+v, %v)", i+1, out, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}

	boom := errors.New("backend down")
	if _, err := tc.GetOrSet(ctx, "p2", func() (*page, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("loader error = %v, want passthrough", err)
	}
	if tc.Has(ctx, "p2") {
		t.Error("failed load must not cache anything")
	}
}
