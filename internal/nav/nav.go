// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav is the static navigation table: the declarative mapping from
// URL paths to guard requirements and pages. It is built once at startup and
// immutable afterwards; the router, the access gate and the top navigation
// all read from it.
package nav

import (
	"fmt"
	"strings"

	"github.com/worklodge/wlp-go/internal/guard"
	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/session"
)

// GuardKind selects which guard chain wraps a table entry.
type GuardKind int

const (
	// PublicOnly pages are for signed-out users only.
	PublicOnly GuardKind = iota
	// Authenticated pages require a signed-in user of any role.
	Authenticated
	// RoleRestricted pages additionally require a role from AllowedRoles.
	RoleRestricted
)

// Entry maps one path (and, when Subtree is set, everything under it) to a
// guard requirement and a page name.
type Entry struct {
	Path         string
	Subtree      bool // entry also covers Path + "/..."
	Guard        GuardKind
	AllowedRoles []model.Role // required, non-empty, iff Guard == RoleRestricted
	Page         string
}

// Route paths. The role sections are subtree roots: every path beneath them
// inherits the section's guard.
const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathSignup         = "/signup"
	PathForgotPassword = "/forgot-password"
	PathUpdatePassword = "/update-password"
	PathDashboard      = "/dashboard"
	PathAccount        = "/account"
	PathEmployer       = "/employer"
	PathFrontDesk      = "/frontdesk"
	PathAdmin          = "/admin"
)

// table is the whole navigable surface. Public screens sit outside the
// authenticated shell; each role section is one role-restricted subtree.
var table = []Entry{
	{Path: PathHome, Guard: PublicOnly, Page: "home"},
	{Path: PathLogin, Guard: PublicOnly, Page: "login"},
	{Path: PathSignup, Guard: PublicOnly, Page: "signup"},
	{Path: PathForgotPassword, Guard: PublicOnly, Page: "forgot-password"},
	{Path: PathUpdatePassword, Guard: PublicOnly, Page: "update-password"},

	{Path: PathDashboard, Guard: Authenticated, Page: "dashboard"},
	{Path: PathAccount, Guard: Authenticated, Page: "account"},

	{Path: PathEmployer, Subtree: true, Guard: RoleRestricted, AllowedRoles: []model.Role{model.RoleEmployer}, Page: "employer"},
	{Path: PathFrontDesk, Subtree: true, Guard: RoleRestricted, AllowedRoles: []model.Role{model.RoleFrontDesk}, Page: "frontdesk"},
	{Path: PathAdmin, Subtree: true, Guard: RoleRestricted, AllowedRoles: []model.Role{model.RoleAdmin}, Page: "admin"},
}

func init() {
	if err := validate(table); err != nil {
		panic(err)
	}
}

// validate enforces the table invariants at startup.
func validate(entries []Entry) error {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !strings.HasPrefix(e.Path, "/") {
			return fmt.Errorf("nav: entry %q: path must start with /", e.Path)
		}
		if seen[e.Path] {
			return fmt.Errorf("nav: duplicate entry for %q", e.Path)
		}
		seen[e.Path] = true
		if (e.Guard == RoleRestricted) != (len(e.AllowedRoles) > 0) {
			return fmt.Errorf("nav: entry %q: allowed roles are required exactly for role-restricted entries", e.Path)
		}
	}
	return nil
}

// Table returns a copy of the navigation table.
func Table() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// Resolve finds the entry governing path: an exact match, or the subtree
// root the path falls under. ok is false for paths outside the table (the
// caller applies the fallback policy).
func Resolve(path string) (Entry, bool) {
	for _, e := range table {
		if path == e.Path {
			return e, true
		}
		if e.Subtree && strings.HasPrefix(path, e.Path+"/") {
			return e, true
		}
	}
	return Entry{}, false
}

// Fallback is where unmatched paths are sent. Policy, not data: the generic
// dashboard redirector sorts the user into the right section (or to login).
func Fallback() string {
	return guard.DefaultLanding
}

// Landing returns the section a role lands on from the generic dashboard
// entry point. ok is false for unknown roles, which get a neutral fallback
// rather than a crash.
func Landing(role model.Role) (string, bool) {
	switch role {
	case model.RoleEmployer:
		return PathEmployer, true
	case model.RoleFrontDesk:
		return PathFrontDesk, true
	case model.RoleAdmin:
		return PathAdmin, true
	default:
		return "", false
	}
}

// Evaluate runs the entry's guard chain against a session snapshot.
// Role-restricted entries re-check authentication on their own, so the chain
// is a single evaluation either way.
func (e Entry) Evaluate(snap session.Snapshot, returnPath string) guard.Decision {
	switch e.Guard {
	case PublicOnly:
		return guard.PublicOnly(snap)
	case Authenticated:
		return guard.Authenticated(snap, returnPath)
	case RoleRestricted:
		return guard.RoleRestricted(snap, returnPath, e.AllowedRoles...)
	default:
		// Unknown guard kinds fail closed.
		return guard.RoleRestricted(snap, returnPath)
	}
}

// Link is one top-navigation item.
type Link struct {
	Href   string
	Label  string
	Active bool
}

// Links returns the navigation menu for a session: the common links plus the
// signed-in user's role section. currentPath marks the active link.
func Links(snap session.Snapshot, currentPath string) []Link {
	links := []Link{
		{Href: PathHome, Label: "Home"},
		{Href: PathDashboard, Label: "Dashboard"},
	}
	if role, ok := snap.Role(); ok {
		if home, ok := Landing(role); ok {
			links = append(links, Link{Href: home, Label: role.Label()})
		}
	}
	for i := range links {
		l := &links[i]
		l.Active = currentPath == l.Href || (l.Href != "/" && strings.HasPrefix(currentPath, l.Href+"/"))
	}
	return links
}
