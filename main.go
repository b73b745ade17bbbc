package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homesoc/internal/collector"
	"homesoc/internal/config"
	"homesoc/internal/engine"
	"homesoc/internal/logging"
	"homesoc/internal/notify"
	"homesoc/internal/snapshot"
	"homesoc/internal/store"
	"homesoc/internal/worker"
	"homesoc/ui/console"
	"homesoc/ui/tui"
)

func main() {
	interval := flag.Int("interval", 0, "refresh interval in seconds (overrides HOMESOC_INTERVAL)")
	minLevel := flag.String("min-level", "", "minimum severity level to display: info, warning, alert")
	once := flag.Bool("once", false, "run a single cycle and exit")
	useTUI := flag.Bool("tui", false, "run the full-screen terminal dashboard")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *interval > 0 {
		cfg.Interval = time.Duration(*interval) * time.Second
	}
	if *minLevel != "" {
		lvl, err := engine.ParseLevel(*minLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			os.Exit(1)
		}
		cfg.MinLevel = lvl
	}

	log, err := logging.New(cfg.LogDir, *useTUI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}

	coll := collector.New(collector.Config{
		TopProcesses:  cfg.TopProcesses,
		SelfIgnoreCPU: cfg.SelfIgnoreCPU,
		AuthLogPaths:  cfg.AuthLogPaths,
		AuthTailLines: cfg.AuthTailLines,
		RecentLogins:  cfg.RecentLogins,
		CycleTimeout:  cfg.Interval,
	})
	jsonl := store.NewJSONL(cfg.MetricsPath, cfg.AlertsPath)

	var history *store.History
	if cfg.HistoryPath != "" {
		history, err = store.OpenHistory(cfg.HistoryPath)
		if err != nil {
			log.WithError(err).Warn("history mirror disabled")
		} else {
			defer history.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := history.Migrate(ctx); err != nil {
				log.WithError(err).Warn("history mirror disabled")
				history.Close()
				history = nil
			}
			cancel()
		}
	}

	var notifiers []notify.Notifier
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RatePerSecond)
		if err != nil {
			fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, tg)
	}
	if cfg.Email.Enabled {
		notifiers = append(notifiers, &notify.Email{
			Server:   cfg.Email.SMTPServer,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			To:       cfg.Email.To,
		})
	}
	dispatcher := notify.NewDispatcher(log, notifiers...)

	var sink tui.FactsSink
	onSnapshot := func(snap snapshot.Snapshot, facts *collector.Facts) {
		fmt.Print("\033[2J\033[H") // clear screen
		console.Print(os.Stdout, console.View{
			Snapshot: snap,
			Facts:    facts,
			MinLevel: cfg.MinLevel,
			Interval: cfg.Interval,
		})
	}
	if *useTUI {
		onSnapshot = sink.Observe
	}

	w, err := worker.New(worker.Options{
		Provider:   coll,
		Table:      cfg.Table,
		Store:      jsonl,
		History:    history,
		Dispatcher: dispatcher,
		Interval:   cfg.Interval,
		Log:        log,
		OnSnapshot: onSnapshot,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *once:
		if _, err := w.RunOnce(context.Background()); err != nil {
			log.WithError(err).Error("cycle failed")
			os.Exit(1)
		}
	case *useTUI:
		if err := tui.Start(w, &sink, cfg.Interval, cfg.MinLevel); err != nil {
			fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
			os.Exit(1)
		}
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := w.Start(ctx); err != nil {
			log.WithError(err).Error("start monitor")
			os.Exit(1)
		}
		<-ctx.Done()
		w.Stop()
		fmt.Println("\n[+] Exiting Home-SOC Monitor.")
	}
}
