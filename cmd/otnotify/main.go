package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/webtense/btr-automation-whatsapp/internal/config"
	"github.com/webtense/btr-automation-whatsapp/internal/render"
	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/internal/transport/telegram"
	"github.com/webtense/btr-automation-whatsapp/internal/workorder"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

var rootCmd = &cobra.Command{
	Use:   "otnotify",
	Short: "Work-order notification dispatcher",
	Long: `otnotify watches a maintenance host's work-order lifecycle and pushes
WhatsApp (or Telegram) notifications: creation alerts, stage changes, closures
with attachments, and daily/weekly summaries.`,
}

func main() {
	cobra.OnInitialize(initViper)
	addPersistentFlags()
	rootCmd.AddCommand(serveCmd, summaryCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initViper() {
	viper.SetEnvPrefix("OTNOTIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())
}

func addPersistentFlags() {
	pf := rootCmd.PersistentFlags()
	pf.String("addr", "127.0.0.1:8960", "hook server listen address")
	pf.String("db", "./host.db", "path to the host's sqlite database")
	pf.String("base-url", "http://localhost:8069", "host base URL for deep links")
	pf.String("secrets-dir", ".", "directory holding secrets.yaml(.example)")
	pf.String("transport", "whatsapp", "delivery backend: whatsapp or telegram")
	pf.String("closed-stage", "", "stage name treated as closure (default: reparado)")
	pf.Int("rate-per-sec", 0, "cap outbound sends per second (0 = unlimited)")
	pf.String("daily-spec", "0 21 * * *", "cron spec for the daily summary")
	pf.String("weekly-spec", "0 21 * * 0", "cron spec for the weekly summary")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.String("log-file", "", "JSON log file path (empty disables)")
	for _, name := range []string{
		"addr", "db", "base-url", "secrets-dir", "transport", "closed-stage",
		"rate-per-sec", "daily-spec", "weekly-spec", "log-level", "log-file",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

func loadConfig() (config.Config, error) {
	return config.FromViper(viper.GetViper())
}

func newLogger(cfg config.Config) (logx.Logger, error) {
	return logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File != "", Path: cfg.Logging.File},
	})
}

func newRenderer(cfg config.Config) render.Renderer {
	r := render.New(cfg.BaseURL)
	r.Classifier = workorder.ClassifierFor(cfg.ClosedStage)
	return r
}

// newSender builds the selected delivery backend. The exec options apply to
// the WhatsApp CLI backend only; Telegram manages its own API timeouts.
func newSender(cfg config.Config, cfgFn transport.ConfigFunc, log logx.Logger, opts ...transport.ExecOption) (transport.Sender, error) {
	switch cfg.Transport {
	case "telegram":
		return telegram.New(cfgFn, log.With(logx.String("transport", "telegram")))
	default:
		if cfg.RatePerSec > 0 {
			opts = append(opts, transport.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)))
		}
		return transport.NewExec(cfgFn, log.With(logx.String("transport", "whatsapp")), opts...), nil
	}
}
