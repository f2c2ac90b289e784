// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const validSecret = "0123456789abcdef0123456789abcdef" // 32 bytes

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("WLP_API_BASE_URL", "https://api.worklodge.example")
	t.Setenv("WLP_SESSION_SECRET", validSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APISessionCookie != "wlp_session" {
		t.Errorf("APISessionCookie = %q", cfg.APISessionCookie)
	}
	if cfg.DBPath != "./data/wlp.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
	if !cfg.IsDevelopment() {
		t.Error("default env should be development")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.UseRedisCache() {
		t.Error("redis should be off without WLP_REDIS_URL")
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d", cfg.EventRetentionDays)
	}
}

func TestLoadTrimsBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("WLP_API_BASE_URL", "https://api.worklodge.example/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://api.worklodge.example" {
		t.Errorf("APIBaseURL = %q, want trailing slash trimmed", cfg.APIBaseURL)
	}
}

func TestLoadRejectsRelativeBaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("WLP_API_BASE_URL", "api.worklodge.example")

	if _, err := Load(); err == nil {
		t.Error("want error for non-absolute base URL")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("WLP_SESSION_SECRET", "too-short")

	_, err := Load()
	if err == nil {
		t.Fatal("want error for short secret")
	}
	if !strings.Contains(err.Error(), "WLP_SESSION_SECRET") {
		t.Errorf("error %q should name the variable", err)
	}
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("WLP_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Error("want error for known default secret")
	}
}

func TestUseRedisCache(t *testing.T) {
	setRequired(t)
	t.Setenv("WLP_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with WLP_REDIS_URL set")
	}
}
