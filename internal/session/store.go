// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session owns the authenticated-identity state for one browser
// session: who is signed in, with what role, and whether the initial probe
// has resolved yet. The Store is the single writer; everyone else reads
// immutable snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/worklodge/wlp-go/internal/api"
	"github.com/worklodge/wlp-go/internal/model"
)

// LoadState tracks the initial identity probe. Pending until the first
// fetch resolves (success or failure); never reverts to Pending afterwards.
type LoadState int

const (
	// Pending means the initial identity fetch has not resolved yet. No
	// guard may redirect in this state.
	Pending LoadState = iota
	// Ready means the store has resolved at least once.
	Ready
)

func (s LoadState) String() string {
	if s == Ready {
		return "ready"
	}
	return "pending"
}

// Snapshot is an immutable view of the session handed to readers. Identity
// is nil when unauthenticated; Role is derived and defined iff Identity is.
type Snapshot struct {
	State    LoadState
	Identity *model.Identity
}

// Role returns the session's role. ok is false when there is no identity or
// the identity carries a role outside the known set (fail closed).
func (s Snapshot) Role() (model.Role, bool) {
	if s.Identity == nil {
		return "", false
	}
	if !s.Identity.Role.Known() {
		return s.Identity.Role, false
	}
	return s.Identity.Role, true
}

// Authenticated reports whether an identity is present.
func (s Snapshot) Authenticated() bool { return s.Identity != nil }

// Store holds the session state for one browser session. All mutation goes
// through Initialize, Refresh and SignOut; reads get value snapshots.
type Store struct {
	client *api.Client

	mu    sync.Mutex
	snap  Snapshot
	gen   uint64 // bumped by SignOut so in-flight fetch results are discarded
	subs  map[int]func(Snapshot)
	subID int
}

// NewStore creates a Store bound to an API client carrying (or lacking) the
// user's upstream session token.
func NewStore(client *api.Client) *Store {
	return &Store{
		client: client,
		subs:   make(map[int]func(Snapshot)),
	}
}

// Client returns the API client this store probes with.
func (st *Store) Client() *api.Client { return st.client }

// Snapshot returns the current session snapshot.
func (st *Store) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snap
}

// Subscribe registers fn to be called (synchronously, in the writer's
// goroutine) whenever the snapshot changes. The returned function removes
// the subscription; results delivered after removal are discarded.
func (st *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.subID
	st.subID++
	st.subs[id] = fn
	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.subs, id)
	}
}

// Initialize performs the initial identity probe. Safe to call more than
// once. Any probe failure degrades to signed-out rather than failing the
// request: the backend re-checks every data call anyway, so failing open
// here only affects which screens are offered. The state transitions to
// Ready exactly once, in all outcomes.
func (st *Store) Initialize(ctx context.Context) {
	identity, err := st.fetch(ctx)
	if err != nil {
		slog.Debug("session probe failed, treating as signed out", "error", err)
		identity = nil
	}
	st.apply(st.currentGen(), identity)
}

// Refresh re-runs the identity probe after a login or signup, keeping the
// Ready state. Callers must wait for Refresh to return before navigating,
// so the next guard evaluation sees the new identity.
func (st *Store) Refresh(ctx context.Context) error {
	gen := st.currentGen()
	identity, err := st.fetch(ctx)
	if err != nil {
		return fmt.Errorf("refreshing session: %w", err)
	}
	st.apply(gen, identity)
	return nil
}

// SignOut calls the backend's logout endpoint and clears the local identity
// unconditionally: stale client state is worse than a failed network call.
// A non-nil error is a non-fatal warning for the caller to surface.
func (st *Store) SignOut(ctx context.Context) error {
	err := st.client.Logout(ctx)

	st.mu.Lock()
	st.gen++ // discard any in-flight fetch result
	changed := st.snap.Identity != nil || st.snap.State != Ready
	st.snap = Snapshot{State: Ready}
	subs := st.subscribers()
	snap := st.snap
	st.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(snap)
		}
	}

	if err != nil {
		return fmt.Errorf("sign-out call failed (local session cleared): %w", err)
	}
	return nil
}

// fetch probes /api/me. A 401 from the backend is a normal "no session"
// answer, not a failure.
func (st *Store) fetch(ctx context.Context) (*model.Identity, error) {
	identity, err := st.client.Me(ctx)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return nil, nil
		}
		return nil, err
	}
	return identity, nil
}

// apply installs a fetch result unless the store moved on (SignOut bumped
// gen) while the fetch was in flight.
func (st *Store) apply(gen uint64, identity *model.Identity) {
	st.mu.Lock()
	if gen != st.gen {
		st.mu.Unlock()
		return
	}
	changed := st.snap.State != Ready || !sameIdentity(st.snap.Identity, identity)
	st.snap = Snapshot{State: Ready, Identity: identity}
	subs := st.subscribers()
	snap := st.snap
	st.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(snap)
		}
	}
}

func (st *Store) currentGen() uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.gen
}

// subscribers returns the current subscriber set. Caller must hold mu.
func (st *Store) subscribers() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(st.subs))
	for _, fn := range st.subs {
		out = append(out, fn)
	}
	return out
}

func sameIdentity(a, b *model.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
