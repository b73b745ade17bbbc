// Package config loads runtime configuration from the environment, with an
// optional .env file for local setups.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"homesoc/internal/engine"
	"homesoc/internal/probe"
	"homesoc/internal/store"
)

// Config holds the full runtime configuration. All knobs have working
// defaults; an empty environment yields a usable local monitor.
type Config struct {
	Interval      time.Duration
	MinLevel      engine.Level
	TopProcesses  int
	SelfIgnoreCPU float64
	AuthLogPaths  []string
	AuthTailLines int
	RecentLogins  int

	MetricsPath string
	AlertsPath  string
	HistoryPath string
	LogDir      string

	Table engine.Table

	Web struct {
		Addr string
	}

	Telegram struct {
		Enabled       bool
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}

	Email struct {
		Enabled    bool
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		From       string
		To         string
	}
}

// Load reads HOMESOC_* environment variables, applies defaults, and
// validates the result. A .env file in the working directory is honored
// when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	var cfg Config

	cfg.Interval = envDuration("HOMESOC_INTERVAL", 60*time.Second)
	cfg.TopProcesses = envInt("HOMESOC_TOP_PROCESSES", 5)
	cfg.SelfIgnoreCPU = envFloat("HOMESOC_SELF_IGNORE_CPU", 90.0)
	cfg.AuthTailLines = envInt("HOMESOC_AUTH_TAIL_LINES", 300)
	cfg.RecentLogins = envInt("HOMESOC_RECENT_LOGINS", 5)
	cfg.AuthLogPaths = probe.DefaultAuthLogPaths
	if path := os.Getenv("HOMESOC_AUTH_LOG"); path != "" {
		cfg.AuthLogPaths = []string{path}
	}

	min, err := engine.ParseLevel(envString("HOMESOC_MIN_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("HOMESOC_MIN_LEVEL: %w", err)
	}
	cfg.MinLevel = min

	cfg.MetricsPath = envString("HOMESOC_METRICS_FILE", store.DefaultMetricsFile)
	cfg.AlertsPath = envString("HOMESOC_ALERTS_FILE", store.DefaultAlertsFile)
	cfg.HistoryPath = os.Getenv("HOMESOC_HISTORY_DB")
	cfg.LogDir = envString("HOMESOC_LOG_DIR", ".")

	cfg.Table = engine.DefaultTable()
	overrideBreakpoints(&cfg.Table.CPULoadPerCore, "HOMESOC_CPU_LOAD")
	overrideBreakpoints(&cfg.Table.MemoryUsedPct, "HOMESOC_MEMORY_PCT")
	overrideBreakpoints(&cfg.Table.ProcessCPU, "HOMESOC_PROCESS_CPU")
	overrideBreakpoints(&cfg.Table.EstablishedConns, "HOMESOC_ESTABLISHED")
	overrideBreakpoints(&cfg.Table.FailedLogins, "HOMESOC_FAILED_LOGINS")

	cfg.Web.Addr = envString("HOMESOC_WEB_ADDR", ":8080")

	cfg.Telegram.Enabled = envBool("HOMESOC_TELEGRAM_ENABLED", false)
	cfg.Telegram.BotToken = os.Getenv("HOMESOC_TELEGRAM_TOKEN")
	cfg.Telegram.ChatID = envInt64("HOMESOC_TELEGRAM_CHAT_ID", 0)
	cfg.Telegram.RatePerSecond = envInt("HOMESOC_TELEGRAM_RATE", 1)

	cfg.Email.Enabled = envBool("HOMESOC_EMAIL_ENABLED", false)
	cfg.Email.SMTPServer = os.Getenv("HOMESOC_SMTP_SERVER")
	cfg.Email.SMTPPort = envInt("HOMESOC_SMTP_PORT", 587)
	cfg.Email.Username = os.Getenv("HOMESOC_SMTP_USERNAME")
	cfg.Email.Password = os.Getenv("HOMESOC_SMTP_PASSWORD")
	cfg.Email.From = os.Getenv("HOMESOC_EMAIL_FROM")
	cfg.Email.To = os.Getenv("HOMESOC_EMAIL_TO")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects contradictory settings. A bad threshold table is fatal at
// startup rather than silently misclassifying for the life of the process.
func (c Config) Validate() error {
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.TopProcesses <= 0 {
		return fmt.Errorf("top process count must be positive, got %d", c.TopProcesses)
	}
	if c.AuthTailLines <= 0 {
		return fmt.Errorf("auth tail window must be positive, got %d", c.AuthTailLines)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram enabled but HOMESOC_TELEGRAM_TOKEN or HOMESOC_TELEGRAM_CHAT_ID missing")
	}
	if c.Email.Enabled && (c.Email.SMTPServer == "" || c.Email.To == "") {
		return fmt.Errorf("email enabled but HOMESOC_SMTP_SERVER or HOMESOC_EMAIL_TO missing")
	}
	return nil
}

func overrideBreakpoints(bp *engine.Breakpoints, prefix string) {
	if v, ok := lookupFloat(prefix + "_WARNING"); ok {
		bp.Warning = v
	}
	if v, ok := lookupFloat(prefix + "_ALERT"); ok {
		bp.Alert = v
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, ok := lookupFloat(key); ok {
		return v
	}
	return def
}

func lookupFloat(key string) (float64, bool) {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	// Accept bare seconds as well as Go duration syntax.
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return def
}
