package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"llm-crypto-agent/internal/exchange/coinbase"
	"llm-crypto-agent/internal/exchange/exchangeobs"
	"llm-crypto-agent/internal/exchange/sim"
	"llm-crypto-agent/internal/history"
	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/journal"
	"llm-crypto-agent/internal/logger"
	"llm-crypto-agent/internal/news"
	"llm-crypto-agent/internal/oracle/noop"
	"llm-crypto-agent/internal/oracle/ollama"
	"llm-crypto-agent/internal/oracle/openai"
	"llm-crypto-agent/internal/oracle/oracleobs"
	"llm-crypto-agent/internal/store"
	"llm-crypto-agent/internal/trace"
)

// initializeSystem loads the environment and brings up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// applyOverrides lets command-line flags win over the config file.
func applyOverrides(cfg *store.Config, model string, pollInterval time.Duration, journalDir string) {
	if model != "" {
		cfg.Oracle.Model = model
	}
	if pollInterval > 0 {
		cfg.PollSeconds = int(pollInterval / time.Second)
		if cfg.PollSeconds < 1 {
			cfg.PollSeconds = 1
		}
	}
	if journalDir != "" {
		cfg.Journal.Directory = journalDir
	}
}

// initializeExchange returns the LIVE Coinbase client or the DRY_RUN
// simulator, wrapped with observability. Missing credentials in LIVE mode are
// fatal before the first cycle.
func initializeExchange(ctx context.Context, cfg *store.Config) (interfaces.Exchange, error) {
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
		return exchangeobs.Wrap(simExchange()), nil
	}

	client, err := coinbase.NewFromEnv("")
	if err != nil {
		return nil, err
	}
	return exchangeobs.Wrap(client), nil
}

// simExchange seeds a plausible DRY_RUN portfolio.
func simExchange() *sim.Exchange {
	return sim.New(
		map[string]float64{
			"USDC": 1000,
			"DOGE": 500,
			"XRP":  100,
		},
		map[string]float64{
			"DOGE-USDC": 0.25,
			"XRP-USDC":  2.10,
			"ADA-USDC":  0.95,
		},
	)
}

// initializeOracle selects the decision provider, wrapped with observability.
func initializeOracle(ctx context.Context, cfg *store.Config) interfaces.Oracle {
	var oracle interfaces.Oracle
	switch strings.ToUpper(cfg.Oracle.Provider) {
	case "OLLAMA":
		oracle = ollama.New(cfg)
	case "OPENAI":
		oracle = openai.New(cfg)
	default:
		oracle = noop.New()
		logger.Warn(ctx, "No oracle provider configured - using noop oracle (always hold)")
	}
	return oracleobs.Wrap(oracle)
}

func journalFor(cfg *store.Config) (interfaces.Journal, error) {
	return journal.New(cfg.Journal.Directory, cfg.Journal.Prefix, cfg.Journal.Extension)
}

// initializeHistory opens the SQLite session history, or returns nil when
// disabled. A broken history store is a warning, not a startup failure.
func initializeHistory(ctx context.Context, cfg *store.Config) *history.Store {
	if cfg.History.DSN == "" {
		return nil
	}
	s, err := history.Open(cfg.History.DSN)
	if err != nil {
		logger.Warn(ctx, "Session history unavailable", "dsn", cfg.History.DSN, "error", err)
		return nil
	}
	return s
}

func initializeNews(cfg *store.Config) *news.Service {
	return news.NewService(cfg)
}
