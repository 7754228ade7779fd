package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ADMIN_EMAILS", " Admin@Lab.edu , ,ops@lab.edu")
	t.Setenv("SESSION_TTL_SECONDS", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3001" {
		t.Errorf("expected default port 3001, got %q", cfg.Port)
	}
	if cfg.SessionTTL != 2*time.Minute {
		t.Errorf("expected 2m session ttl, got %v", cfg.SessionTTL)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "admin@lab.edu" {
		t.Errorf("unexpected admin emails: %v", cfg.AdminEmails)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mongo")
	if _, err := Load(); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432"}
	want := "host=db user=u password=p dbname=n port=5432 sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	cfg.DatabaseURL = "postgres://x"
	if got := cfg.DSN(); got != "postgres://x" {
		t.Errorf("DATABASE_URL should win, got %q", got)
	}
}
