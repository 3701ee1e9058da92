// Package config holds the application-level settings (addresses, paths,
// schedules). Delivery secrets live separately in internal/secrets because
// they must stay hot-reloadable and fail-open.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Addr is the listen address for the lifecycle-hook HTTP server.
	Addr string
	// DBPath points at the host application's SQLite database file.
	DBPath string
	// BaseURL is the host's public root used to build deep links.
	BaseURL string
	// SecretsDir is where secrets.yaml(.example) lives.
	SecretsDir string
	// Transport selects the delivery backend: "whatsapp" (exec CLI) or "telegram".
	Transport string
	// ClosedStage overrides the stage name that counts as a closure.
	ClosedStage string
	// RatePerSec caps outbound delivery invocations. Zero disables the cap.
	RatePerSec int

	// Cron specs for the periodic digests (robfig/cron 5-field syntax).
	DailySpec  string
	WeeklySpec string

	Logging Logging
}

type Logging struct {
	Level   string
	Console bool
	File    string // empty disables the file sink
}

// SetDefaults registers every key with its default so `viper.AllSettings`
// and `--help` agree about the full surface.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8960")
	v.SetDefault("db", "./host.db")
	v.SetDefault("base-url", "http://localhost:8069")
	v.SetDefault("secrets-dir", ".")
	v.SetDefault("transport", "whatsapp")
	v.SetDefault("closed-stage", "")
	v.SetDefault("rate-per-sec", 0)
	v.SetDefault("daily-spec", "0 21 * * *")
	v.SetDefault("weekly-spec", "0 21 * * 0")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-file", "")
}

// FromViper materializes and validates the settings.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Addr:        v.GetString("addr"),
		DBPath:      v.GetString("db"),
		BaseURL:     strings.TrimRight(v.GetString("base-url"), "/"),
		SecretsDir:  v.GetString("secrets-dir"),
		Transport:   strings.ToLower(v.GetString("transport")),
		ClosedStage: v.GetString("closed-stage"),
		RatePerSec:  v.GetInt("rate-per-sec"),
		DailySpec:   v.GetString("daily-spec"),
		WeeklySpec:  v.GetString("weekly-spec"),
		Logging: Logging{
			Level:   v.GetString("log-level"),
			Console: true,
			File:    v.GetString("log-file"),
		},
	}
	if cfg.Transport != "whatsapp" && cfg.Transport != "telegram" {
		return Config{}, fmt.Errorf("config: unknown transport %q", cfg.Transport)
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, fmt.Errorf("config: db path is required")
	}
	return cfg, nil
}
