package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/webtense/btr-automation-whatsapp/internal/gate"
	"github.com/webtense/btr-automation-whatsapp/internal/secrets"
	"github.com/webtense/btr-automation-whatsapp/internal/server"
	"github.com/webtense/btr-automation-whatsapp/internal/store"
	"github.com/webtense/btr-automation-whatsapp/internal/summary"
	"github.com/webtense/btr-automation-whatsapp/internal/transport"
	"github.com/webtense/btr-automation-whatsapp/pkg/logx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hook server and the summary scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		st, err := store.Open(store.Config{Path: cfg.DBPath, BusyTimeout: 5 * time.Second})
		if err != nil {
			return err
		}
		defer st.Close()

		// Secrets stay hot: the watcher refreshes the cached snapshot so
		// destination/timeout edits apply to the next send.
		mgr := secrets.NewManager(cfg.SecretsDir, log.With(logx.String("component", "secrets")))
		cfgFn := transport.ConfigFunc(mgr.Current)
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("secrets watch unavailable, falling back to per-send reads", logx.Err(err))
			cfgFn = mgr.Reload
		}

		renderer := newRenderer(cfg)
		sender, err := newSender(cfg, cfgFn, log)
		if err != nil {
			return err
		}
		summarySender, err := newSender(cfg, cfgFn, log, transport.WithSummaryTimeout())
		if err != nil {
			return err
		}

		g := gate.New(st, renderer, sender, log.With(logx.String("component", "gate")))
		sum := summary.New(st, renderer, summarySender, log.With(logx.String("component", "summary")))

		c := cron.New()
		if _, err := c.AddFunc(cfg.DailySpec, func() { sum.Daily(ctx, time.Now()) }); err != nil {
			return err
		}
		if _, err := c.AddFunc(cfg.WeeklySpec, func() { sum.Weekly(ctx, time.Now()) }); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           server.New(g, log.With(logx.String("component", "server"))).Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info("hook server listening", logx.String("addr", cfg.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutCancel()
			_ = srv.Shutdown(shutCtx)
			log.Info("shut down")
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}
