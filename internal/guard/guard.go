// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard decides, for a given session snapshot, whether a request may
// enter a page subtree. Each guard is a pure function from snapshot (plus the
// requested path) to a tagged decision; the HTTP layer acts on the decision.
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/session"
)

// Fixed navigation targets owned by the guard layer.
const (
	// LoginPath is where unauthenticated users are sent, carrying a
	// return-path in the ReturnParam query parameter.
	LoginPath = "/login"
	// DefaultLanding is the neutral landing area: where authenticated users
	// are bounced from public-only pages, and where wrong-role users are
	// sent instead of a bare 403.
	DefaultLanding = "/dashboard"
	// ReturnParam is the query parameter carrying the percent-encoded
	// original destination across the login detour.
	ReturnParam = "next"
)

// Action is the kind of decision a guard produces.
type Action int

const (
	// Render lets the wrapped page render.
	Render Action = iota
	// Redirect sends the user to Decision.Target instead.
	Redirect
	// Placeholder renders a neutral loading state: the session store has
	// not resolved yet, and redirecting now would bounce a signed-in user
	// to login mid-load.
	Placeholder
)

// Decision is the outcome of evaluating a guard.
type Decision struct {
	Action Action
	Target string // redirect target, set iff Action == Redirect
}

func render() Decision { return Decision{Action: Render} }

func redirect(target string) Decision { return Decision{Action: Redirect, Target: target} }

func placeholder() Decision { return Decision{Action: Placeholder} }

// PublicOnly admits only signed-out users; a signed-in user is bounced to
// the default landing area. Used on login/signup/reset screens.
func PublicOnly(snap session.Snapshot) Decision {
	if snap.State == session.Pending {
		return placeholder()
	}
	if snap.Authenticated() {
		return redirect(DefaultLanding)
	}
	return render()
}

// Authenticated admits only signed-in users; a signed-out user is sent to
// login with returnPath (the original path plus query) captured so the login
// flow can resume it.
func Authenticated(snap session.Snapshot, returnPath string) Decision {
	if snap.State == session.Pending {
		return placeholder()
	}
	if !snap.Authenticated() {
		return redirect(LoginRedirect(returnPath))
	}
	return render()
}

// RoleRestricted admits signed-in users whose role is in the allow set. It
// re-checks authentication independently so it is safe standalone, outside
// its usual nesting inside Authenticated. Unknown roles fail closed to the
// default landing area.
func RoleRestricted(snap session.Snapshot, returnPath string, allow ...model.Role) Decision {
	if snap.State == session.Pending {
		return placeholder()
	}
	if !snap.Authenticated() {
		return redirect(LoginRedirect(returnPath))
	}
	role, ok := snap.Role()
	if !ok {
		return redirect(DefaultLanding)
	}
	for _, a := range allow {
		if role == a {
			return render()
		}
	}
	return redirect(DefaultLanding)
}

// LoginRedirect builds the login URL carrying returnPath. An empty or unsafe
// return path is omitted rather than encoded.
func LoginRedirect(returnPath string) string {
	p := SafeReturnPath(returnPath)
	if p == "" || p == DefaultLanding {
		return LoginPath
	}
	return LoginPath + "?" + ReturnParam + "=" + url.QueryEscape(p)
}

// ReturnPath captures the request's path plus query string, the value a
// login redirect should resume to.
func ReturnPath(r *http.Request) string {
	p := r.URL.Path
	if r.URL.RawQuery != "" {
		p += "?" + r.URL.RawQuery
	}
	return p
}

// ConsumeReturnPath validates a raw return-path taken from the login page's
// query and returns the destination to resume, defaulting to the landing
// area when absent or unsafe.
func ConsumeReturnPath(raw string) string {
	if p := SafeReturnPath(raw); p != "" {
		return p
	}
	return DefaultLanding
}

// SafeReturnPath accepts only relative, single-slash-rooted paths, so a
// crafted next parameter cannot redirect off-site. Returns "" for anything
// else.
func SafeReturnPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return raw
}
