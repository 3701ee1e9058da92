package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/webtense/btr-automation-whatsapp/internal/secrets"
	"github.com/webtense/btr-automation-whatsapp/internal/store"
	"github.com/webtense/btr-automation-whatsapp/internal/summary"
	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Send a one-shot digest (for external schedulers)",
}

func init() {
	summaryCmd.AddCommand(
		&cobra.Command{
			Use:   "daily",
			Short: "Send the daily work-order digest",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSummary(func(ctx context.Context, s *summary.Service) {
					s.Daily(ctx, time.Now())
				})
			},
		},
		&cobra.Command{
			Use:   "weekly",
			Short: "Send the weekly work-order digest",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSummary(func(ctx context.Context, s *summary.Service) {
					s.Weekly(ctx, time.Now())
				})
			},
		},
	)
}

func runSummary(run func(context.Context, *summary.Service)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(store.Config{Path: cfg.DBPath, BusyTimeout: 5 * time.Second})
	if err != nil {
		return err
	}
	defer st.Close()

	// One-shot: read the secrets fresh, no watcher needed.
	cfgFn := transport.ConfigFunc(func() secrets.Snapshot {
		return secrets.Load(cfg.SecretsDir, log)
	})
	sender, err := newSender(cfg, cfgFn, log, transport.WithSummaryTimeout())
	if err != nil {
		return err
	}

	svc := summary.New(st, newRenderer(cfg), sender, log.With(logx.String("component", "summary")))
	run(context.Background(), svc)
	return nil
}
