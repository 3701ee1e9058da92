package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestFromViperDefaults(t *testing.T) {
	t.Parallel()
	v := viper.New()
	SetDefaults(v)

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Transport != "whatsapp" {
		t.Fatalf("Transport = %q", cfg.Transport)
	}
	if cfg.DailySpec != "0 21 * * *" || cfg.WeeklySpec != "0 21 * * 0" {
		t.Fatalf("cron specs = %q / %q", cfg.DailySpec, cfg.WeeklySpec)
	}
	if !cfg.Logging.Console {
		t.Fatal("console logging should default on")
	}
}

func TestFromViperValidation(t *testing.T) {
	t.Parallel()
	v := viper.New()
	SetDefaults(v)
	v.Set("transport", "carrier-pigeon")
	if _, err := FromViper(v); err == nil {
		t.Fatal("unknown transport must be rejected")
	}

	v = viper.New()
	SetDefaults(v)
	v.Set("db", "   ")
	if _, err := FromViper(v); err == nil {
		t.Fatal("blank db path must be rejected")
	}
}

func TestFromViperNormalizes(t *testing.T) {
	t.Parallel()
	v := viper.New()
	SetDefaults(v)
	v.Set("transport", "Telegram")
	v.Set("base-url", "https://erp.example.com/")

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper: %v", err)
	}
	if cfg.Transport != "telegram" {
		t.Fatalf("Transport = %q", cfg.Transport)
	}
	if cfg.BaseURL != "https://erp.example.com" {
		t.Fatalf("BaseURL = %q, trailing slash must be trimmed", cfg.BaseURL)
	}
}
