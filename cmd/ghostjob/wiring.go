package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jonathan/ghost-job-detector/internal/analysis"
	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/db"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/ingest"
	"github.com/jonathan/ghost-job-detector/internal/llm"
	"github.com/jonathan/ghost-job-detector/internal/logger"
	"github.com/jonathan/ghost-job-detector/internal/ratelimit"
	"github.com/jonathan/ghost-job-detector/internal/server"
	"github.com/jonathan/ghost-job-detector/internal/signals"
)

// app bundles the wired components a command needs, with their cleanup.
// store is never nil: without a database it is an in-memory store, so
// repeated analyses within one process still feed the history signals.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	analyzer *analysis.Analyzer
	ingestor *ingest.Ingestor
	database *db.DB
	store    server.Store

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// loadConfig builds the effective configuration from the optional file,
// defaults, and environment.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded.MergeWithDefaults()
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildApp wires the analyzer, ingestor, and persistence. Components
// that lack credentials are left out; the analysis then degrades
// instead of failing.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(jsonLogs, debugLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	var client llm.Client
	if cfg.APIKey != "" {
		client, err = llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create model client: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
	} else {
		log.Warn("GEMINI_API_KEY not set; semantic analysis and URL ingestion are disabled")
	}

	var store history.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			a.Close()
			return nil, err
		}
		a.database = database
		a.store = database
		a.closers = append(a.closers, database.Close)
		store = database
	} else {
		log.Warn("DATABASE_URL not set; history signals use in-memory state only")
		mem := history.NewMemory()
		a.store = server.NewMemoryStore(mem)
		store = mem
	}

	limiter := ratelimit.NewDomainLimiter(cfg.VerifyDomainWindow(), 1)
	a.closers = append(a.closers, limiter.Stop)

	providers := signals.All(cfg, client, store, limiter)
	a.analyzer = analysis.New(cfg, providers, log)
	a.ingestor = ingest.New(client, cfg.UseBrowser, log)

	return a, nil
}
