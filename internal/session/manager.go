// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Browser-session keys.
const (
	// KeyAPIToken stores the upstream lodging-API session token.
	KeyAPIToken = "api_token"
)

// NewManager creates the browser-session manager backed by SQLite.
func NewManager(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	// Expired rows are swept by the scheduler, not the store's own goroutine.
	sm.Store = sqlite3store.NewWithCleanupInterval(db, 0)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}
