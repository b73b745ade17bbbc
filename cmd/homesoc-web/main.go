// Command homesoc-web serves the dashboard and the JSON API over the log
// files the monitor writes. It is read-only and safe to run alongside the
// monitor process.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homesoc/internal/api"
	"homesoc/internal/config"
	"homesoc/internal/logging"
	"homesoc/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogDir, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}

	jsonl := store.NewJSONL(cfg.MetricsPath, cfg.AlertsPath)

	var history *store.History
	if cfg.HistoryPath != "" {
		history, err = store.OpenHistory(cfg.HistoryPath)
		if err != nil {
			log.WithError(err).Warn("history mirror unavailable, trends disabled")
		} else {
			defer history.Close()
		}
	}

	srv := &http.Server{
		Addr:    cfg.Web.Addr,
		Handler: api.NewRouter(jsonl, history, log),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.Web.Addr).Info("web dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("web server failed")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("web server shutdown")
	}
}
