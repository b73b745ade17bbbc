package config

import (
	"testing"
	"time"

	"homesoc/internal/engine"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOMESOC_INTERVAL", "HOMESOC_MIN_LEVEL", "HOMESOC_TOP_PROCESSES",
		"HOMESOC_AUTH_TAIL_LINES", "HOMESOC_AUTH_LOG",
		"HOMESOC_FAILED_LOGINS_WARNING", "HOMESOC_FAILED_LOGINS_ALERT",
		"HOMESOC_TELEGRAM_ENABLED", "HOMESOC_TELEGRAM_TOKEN", "HOMESOC_TELEGRAM_CHAT_ID",
		"HOMESOC_EMAIL_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with empty env: %v", err)
	}
	if cfg.Interval != 60*time.Second {
		t.Errorf("Interval = %s, want 60s", cfg.Interval)
	}
	if cfg.MinLevel != engine.LevelInfo {
		t.Errorf("MinLevel = %s, want info", cfg.MinLevel)
	}
	if cfg.TopProcesses != 5 {
		t.Errorf("TopProcesses = %d, want 5", cfg.TopProcesses)
	}
	if cfg.AuthTailLines != 300 {
		t.Errorf("AuthTailLines = %d, want 300", cfg.AuthTailLines)
	}
	if cfg.Table.FailedLogins.Alert != 20 {
		t.Errorf("default FailedLogins alert = %.0f, want 20", cfg.Table.FailedLogins.Alert)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOMESOC_INTERVAL", "30")
	t.Setenv("HOMESOC_MIN_LEVEL", "warning")
	t.Setenv("HOMESOC_AUTH_LOG", "/tmp/fake-auth.log")
	t.Setenv("HOMESOC_FAILED_LOGINS_WARNING", "3")
	t.Setenv("HOMESOC_FAILED_LOGINS_ALERT", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 30*time.Second {
		t.Errorf("bare-seconds interval = %s, want 30s", cfg.Interval)
	}
	if cfg.MinLevel != engine.LevelWarning {
		t.Errorf("MinLevel = %s, want warning", cfg.MinLevel)
	}
	if len(cfg.AuthLogPaths) != 1 || cfg.AuthLogPaths[0] != "/tmp/fake-auth.log" {
		t.Errorf("AuthLogPaths = %v", cfg.AuthLogPaths)
	}
	if cfg.Table.FailedLogins.Warning != 3 || cfg.Table.FailedLogins.Alert != 10 {
		t.Errorf("FailedLogins breakpoints = %+v", cfg.Table.FailedLogins)
	}
}

func TestLoadDurationSyntax(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOMESOC_INTERVAL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interval != 2*time.Minute {
		t.Errorf("Interval = %s, want 2m", cfg.Interval)
	}
}

func TestLoadRejectsContradictoryTable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOMESOC_FAILED_LOGINS_WARNING", "50")
	t.Setenv("HOMESOC_FAILED_LOGINS_ALERT", "10")

	if _, err := Load(); err == nil {
		t.Fatal("warning breakpoint above alert must be fatal at load")
	}
}

func TestLoadRejectsUnknownMinLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOMESOC_MIN_LEVEL", "critical")

	if _, err := Load(); err == nil {
		t.Fatal("unknown min level must be rejected")
	}
}

func TestLoadRejectsHalfConfiguredTelegram(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOMESOC_TELEGRAM_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatal("telegram enabled without token and chat id must be rejected")
	}
}
