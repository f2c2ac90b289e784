// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/worklodge/wlp-go/internal/model"
)

// SummaryCache provides short-lived cached access to per-user dashboard
// summary stats fetched from the lodging API. Keys are scoped by section
// and user so one user's invalidation never evicts another's entry.
type SummaryCache struct {
	typed *TypedCache[[]model.Stat]
}

// DefaultSummaryTTL is used when no TTL is configured. Summary data goes
// stale quickly, so it is short.
const DefaultSummaryTTL = 30 * time.Second

// NewSummaryCache creates a summary cache on top of the given backend. A
// non-positive ttl falls back to DefaultSummaryTTL.
func NewSummaryCache(backend Cacher, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCache{
		typed: NewTypedCache[[]model.Stat](backend, ttl),
	}
}

func summaryKey(section, userID string) string {
	return fmt.Sprintf("summary:%s:%s", section, userID)
}

// GetOrFetch returns the cached stats for the section and user, or calls
// fetch to load them and caches the result.
func (c *SummaryCache) GetOrFetch(ctx context.Context, section, userID string, fetch func() ([]model.Stat, error)) ([]model.Stat, error) {
	stats, err := c.typed.GetOrSet(ctx, summaryKey(section, userID), func() (*[]model.Stat, error) {
		s, err := fetch()
		if err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		return nil, err
	}
	return *stats, nil
}

// Invalidate evicts the cached stats for the section and user. Called after
// mutations that change the numbers (new request, decision, worker import).
func (c *SummaryCache) Invalidate(ctx context.Context, section, userID string) {
	_ = c.typed.Delete(ctx, summaryKey(section, userID))
}
