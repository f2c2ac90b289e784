// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application.
package model

// Role identifies which section of the platform a user may enter.
// The set is closed: a role value outside this set carries no permissions.
type Role string

// Known roles.
const (
	RoleEmployer  Role = "EMPLOYER"
	RoleFrontDesk Role = "FRONTDESK"
	RoleAdmin     Role = "ADMIN"
)

// Roles returns all known roles.
func Roles() []Role {
	return []Role{RoleEmployer, RoleFrontDesk, RoleAdmin}
}

// Known reports whether the role is one of the closed set.
// Unknown values (e.g. a role added server-side before this client learned
// about it) are treated as "no permission" everywhere.
func (r Role) Known() bool {
	switch r {
	case RoleEmployer, RoleFrontDesk, RoleAdmin:
		return true
	}
	return false
}

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Known()
}

// Label returns a human-readable name for the role.
func (r Role) Label() string {
	switch r {
	case RoleEmployer:
		return "Employer"
	case RoleFrontDesk:
		return "Front Desk"
	case RoleAdmin:
		return "Admin"
	default:
		return string(r)
	}
}
