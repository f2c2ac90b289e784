// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import (
	"testing"

	"github.com/worklodge/wlp-go/internal/guard"
	"github.com/worklodge/wlp-go/internal/model"
	"github.com/worklodge/wlp-go/internal/session"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path     string
		wantPath string
		wantOK   bool
	}{
		{"/", PathHome, true},
		{"/login", PathLogin, true},
		{"/dashboard", PathDashboard, true},
		{"/employer", PathEmployer, true},
		{"/employer/requests/new", PathEmployer, true},
		{"/frontdesk/requests", PathFrontDesk, true},
		{"/admin/users", PathAdmin, true},
		{"/employers", "", false},  // prefix of a subtree root is not the subtree
		{"/dashboard/x", "", false}, // non-subtree entries match exactly
		{"/nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, ok := Resolve(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && e.Path != tt.wantPath {
				t.Errorf("entry path = %q, want %q", e.Path, tt.wantPath)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr bool
	}{
		{"current table is valid", Table(), false},
		{
			"relative path rejected",
			[]Entry{{Path: "login", Guard: PublicOnly}},
			true,
		},
		{
			"duplicate path rejected",
			[]Entry{{Path: "/a", Guard: PublicOnly}, {Path: "/a", Guard: Authenticated}},
			true,
		},
		{
			"role-restricted entry needs roles",
			[]Entry{{Path: "/a", Guard: RoleRestricted}},
			true,
		},
		{
			"roles on a non-restricted entry rejected",
			[]Entry{{Path: "/a", Guard: Authenticated, AllowedRoles: []model.Role{model.RoleAdmin}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.entries)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLanding(t *testing.T) {
	tests := []struct {
		role   model.Role
		want   string
		wantOK bool
	}{
		{model.RoleEmployer, PathEmployer, true},
		{model.RoleFrontDesk, PathFrontDesk, true},
		{model.RoleAdmin, PathAdmin, true},
		{model.Role("AUDITOR"), "", false},
		{model.Role(""), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got, ok := Landing(tt.role)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Landing(%q) = (%q, %v), want (%q, %v)", tt.role, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	signedOut := session.Snapshot{State: session.Ready}
	employer := session.Snapshot{
		State:    session.Ready,
		Identity: &model.Identity{ID: "u1", Email: "e@example.com", Role: model.RoleEmployer},
	}

	login, _ := Resolve(PathLogin)
	if d := login.Evaluate(employer, "/login"); d.Action != guard.Redirect || d.Target != guard.DefaultLanding {
		t.Errorf("signed-in user on /login: got %+v", d)
	}
	if d := login.Evaluate(signedOut, "/login"); d.Action != guard.Render {
		t.Errorf("signed-out user on /login: got %+v", d)
	}

	emp, _ := Resolve("/employer/workers")
	if d := emp.Evaluate(employer, "/employer/workers"); d.Action != guard.Render {
		t.Errorf("employer in own section: got %+v", d)
	}
	if d := emp.Evaluate(signedOut, "/employer/workers"); d.Action != guard.Redirect {
		t.Errorf("signed-out user in employer section: got %+v", d)
	}

	adm, _ := Resolve("/admin/users")
	if d := adm.Evaluate(employer, "/admin/users"); d.Action != guard.Redirect || d.Target != guard.DefaultLanding {
		t.Errorf("employer in admin section: got %+v", d)
	}

	pending := session.Snapshot{}
	for _, e := range Table() {
		if d := e.Evaluate(pending, e.Path); d.Action != guard.Placeholder {
			t.Errorf("pending snapshot on %q: Action = %v, want Placeholder", e.Path, d.Action)
		}
	}
}

func TestLinks(t *testing.T) {
	signedOut := session.Snapshot{State: session.Ready}
	links := Links(signedOut, "/")
	if len(links) != 2 {
		t.Fatalf("signed-out links = %d, want 2", len(links))
	}
	if !links[0].Active {
		t.Error("home link should be active on /")
	}

	admin := session.Snapshot{
		State:    session.Ready,
		Identity: &model.Identity{ID: "u1", Email: "a@example.com", Role: model.RoleAdmin},
	}
	links = Links(admin, "/admin/users")
	if len(links) != 3 {
		t.Fatalf("admin links = %d, want 3", len(links))
	}
	if links[2].Href != PathAdmin || !links[2].Active {
		t.Errorf("admin section link = %+v, want active %s", links[2], PathAdmin)
	}

	// Unknown roles get no section link.
	odd := session.Snapshot{
		State:    session.Ready,
		Identity: &model.Identity{ID: "u2", Email: "o@example.com", Role: model.Role("AUDITOR")},
	}
	if links := Links(odd, "/dashboard"); len(links) != 2 {
		t.Errorf("unknown-role links = %d, want 2", len(links))
	}
}
