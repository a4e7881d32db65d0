package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"llm-crypto-agent/internal/history"
	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/session"
	"llm-crypto-agent/internal/store"
	"llm-crypto-agent/internal/summary"
	"llm-crypto-agent/internal/trace"
)

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "path to the YAML config")
		model        = flag.String("model", "", "override the oracle model")
		pollInterval = flag.Duration("poll-interval", 0, "override the cycle interval, e.g. 30s")
		journalDir   = flag.String("journal-dir", "", "override the journal directory")
		showSession  = flag.String("show-session", "", "print a stored session's trades and exit")
	)
	flag.Parse()

	var err error
	if *showSession != "" {
		err = showStoredSession(*configPath, *showSession)
	} else {
		err = run(*configPath, *model, *pollInterval, *journalDir)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(configPath, model string, pollInterval time.Duration, journalDir string) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	defer trace.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, model, pollInterval, journalDir)

	exchange, err := initializeExchange(ctx, cfg)
	if err != nil {
		return err
	}
	oracle := initializeOracle(ctx, cfg)

	jnl, err := journalFor(cfg)
	if err != nil {
		return err
	}

	ctrl := session.New(cfg, exchange, oracle, jnl)
	if hist := initializeHistory(ctx, cfg); hist != nil {
		defer hist.Close()
		ctrl.History = hist
	}
	if cfg.News.Enabled {
		ctrl.News = initializeNews(cfg)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	var runErr error
	select {
	case runErr = <-done:
	case sig := <-sigc:
		logger.Warn(ctx, "Shutdown signal received", "signal", sig.String())
		cancel()
		select {
		case runErr = <-done:
		case <-time.After(5 * time.Second):
			logger.Warn(ctx, "Session did not stop in time, exiting")
		}
	}

	printSummary(cfg, ctrl)
	return runErr
}

func printSummary(cfg *store.Config, ctrl *session.Controller) {
	report := summary.Report{
		SessionID:  ctrl.SessionID(),
		StartedAt:  ctrl.StartedAt(),
		StopReason: ctrl.StopReason(),
		Trades:     ctrl.Ledger().History(),
	}
	summary.Print(os.Stdout, report)

	csvPath := filepath.Join(cfg.Journal.Directory, "trades_"+ctrl.SessionID()+".csv")
	if err := summary.WriteCSV(csvPath, report); err != nil {
		fmt.Fprintln(os.Stderr, "csv export:", err)
	} else {
		fmt.Println("Trades exported to", csvPath)
	}
}

// showStoredSession prints a past session's trades from the history store.
func showStoredSession(configPath, sessionID string) error {
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.History.DSN == "" {
		return fmt.Errorf("session history is disabled: set history.dsn in %s", configPath)
	}

	ctx := context.Background()
	hist, err := history.Open(cfg.History.DSN)
	if err != nil {
		return err
	}
	defer hist.Close()

	trades, err := hist.SessionTrades(ctx, sessionID)
	if err != nil {
		return err
	}
	report := summary.Report{SessionID: sessionID, Trades: trades}
	if len(trades) > 0 {
		report.StartedAt = trades[0].Timestamp
	}
	summary.Print(os.Stdout, report)
	return nil
}
