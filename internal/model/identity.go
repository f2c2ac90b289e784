// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"unicode/utf8"
)

// Identity is the authenticated user as reported by the lodging API's
// session probe. Absent entirely (nil) when unauthenticated.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// DisplayName returns the name if set, otherwise the email.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// Initial returns a single uppercase character for avatar badges.
func (i Identity) Initial() string {
	s := i.Name
	if s == "" {
		s = i.Email
	}
	if s == "" {
		return "U"
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return "U"
	}
	return strings.ToUpper(string(r))
}
