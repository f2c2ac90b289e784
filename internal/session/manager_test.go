// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/worklodge/wlp-go/internal/session"
	"github.com/worklodge/wlp-go/internal/testutil"
)

func TestNewManager(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	sm := session.NewManager(db, false)
	if sm.Lifetime != 24*time.Hour {
		t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", sm.Cookie.SameSite)
	}
	if !sm.Cookie.Secure {
		t.Error("production cookies must be Secure")
	}

	dev := session.NewManager(db, true)
	if dev.Cookie.Secure {
		t.Error("development cookies must not require Secure")
	}
}
