// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/worklodge/wlp-go/internal/service"
	"github.com/worklodge/wlp-go/internal/store"
)

// Scheduler handles scheduled maintenance tasks: pruning the event log and
// removing expired browser sessions.
type Scheduler struct {
	db             *sql.DB
	cron           *cron.Cron
	logger         *slog.Logger
	events         *service.EventService
	eventRetention time.Duration
}

// New creates a new scheduler instance. eventRetention is how long event log
// entries are kept before pruning.
func New(db *sql.DB, logger *slog.Logger, eventRetention time.Duration) *Scheduler {
	return &Scheduler{
		db:             db,
		cron:           cron.New(),
		logger:         logger,
		events:         service.NewEventService(db),
		eventRetention: eventRetention,
	}
}

// Start registers the maintenance jobs and begins the scheduler.
func (s *Scheduler) Start() error {
	// Prune old event log entries once a day
	if _, err := s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneEvents(); err != nil {
			s.logger.Error("failed to prune event log", "error", err)
		}
	}); err != nil {
		return err
	}

	// Remove expired sessions hourly. The session store's own cleanup
	// goroutine is disabled, this job owns the sweep.
	if _, err := s.cron.AddFunc("15 * * * *", func() {
		if err := s.pruneSessions(); err != nil {
			s.logger.Error("failed to prune expired sessions", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// pruneEvents removes event log entries older than the retention window.
func (s *Scheduler) pruneEvents() error {
	ctx := context.Background()
	queries := store.New(s.db)

	before, err := queries.CountEvents(ctx)
	if err != nil {
		return err
	}

	if err := s.events.DeleteOldEvents(ctx, s.eventRetention); err != nil {
		return err
	}

	after, err := queries.CountEvents(ctx)
	if err != nil {
		return err
	}

	if removed := before - after; removed > 0 {
		s.logger.Info("pruned event log", "removed", removed, "retention", s.eventRetention)
	}
	return nil
}

// pruneSessions removes expired rows from the sessions table.
func (s *Scheduler) pruneSessions() error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expiry < julianday('now')`)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Info("pruned expired sessions", "removed", n)
	}
	return nil
}
