package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBHost != "localhost" || cfg.DBPort != 8000 {
		t.Fatalf("unexpected endpoint %s:%d", cfg.DBHost, cfg.DBPort)
	}
	if cfg.DBDebug {
		t.Fatalf("debug should default to false")
	}
	if cfg.RouteFetch != "/data/get/{key}" {
		t.Fatalf("unexpected fetch route %q", cfg.RouteFetch)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.JournalType != "none" {
		t.Fatalf("JournalType = %q", cfg.JournalType)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "9000")
	t.Setenv("DB_DEBUG", "true")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("JOURNAL_TTL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBHost != "db.internal" || cfg.DBPort != 9000 || !cfg.DBDebug {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 0 {
		t.Fatalf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.JournalTTL != time.Minute {
		t.Fatalf("JournalTTL = %s", cfg.JournalTTL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DB_PORT":                 "0",
		"REQUEST_TIMEOUT_SECONDS": "-1",
		"JOURNAL_TTL_SECONDS":     "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
