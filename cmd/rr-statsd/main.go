package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haukened/rr-stats/internal/stats/common/clock"
	"github.com/haukened/rr-stats/internal/stats/common/log"
	"github.com/haukened/rr-stats/internal/stats/config"
	"github.com/haukened/rr-stats/internal/stats/gateways/eventlog"
	"github.com/haukened/rr-stats/internal/stats/gateways/ingest"
	"github.com/haukened/rr-stats/internal/stats/gateways/metrics"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard/bloom"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard/bolt"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard/lru"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard/parsers"
	"github.com/haukened/rr-stats/internal/stats/services/classifier"
)

const (
	version = "0.1.0-dev"
	appName = "rr-statsd"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds the wired components of the statistics daemon.
type Application struct {
	config     *config.AppConfig
	logger     log.Logger
	aggregator *classifier.Aggregator
	privacy    *config.PrivacySource
	wildcards  wildcard.Repository
	metrics    *metrics.Server
	ingest     *ingest.UDPListener
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info(map[string]any{
		"version":       version,
		"env":           cfg.Env,
		"log_level":     cfg.LogLevel,
		"bucket_width":  cfg.BucketWidth.String(),
		"privacy_level": cfg.PrivacyLevel,
		"wildcard_list": cfg.WildcardList,
		"metrics_addr":  cfg.MetricsAddr,
		"ingest_addr":   cfg.IngestAddr,
	}, "Starting "+appName)

	app, err := buildApplication(cfg, log.GetLogger(), clock.RealClock{})
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigChan {
			if sig == syscall.SIGHUP {
				log.Info(nil, "Reload signal received")
				app.aggregator.Reload()
				app.readBlockLists()
				continue
			}
			log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
			cancel()
			return
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Daemon failed")
	}
	log.Info(nil, appName+" stopped gracefully")
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig, logger log.Logger, clk clock.Clock) (*Application, error) {
	privacySource := config.NewPrivacySource(cfg.Privacy(), logger)
	if cfg.PrivacyFile != "" {
		if err := privacySource.WatchFile(cfg.PrivacyFile); err != nil {
			return nil, fmt.Errorf("failed to watch privacy file: %w", err)
		}
	}

	app := &Application{
		config:  cfg,
		logger:  logger,
		privacy: privacySource,
	}

	opts := classifier.Options{
		Logger:      logger,
		Clock:       clk,
		Privacy:     privacySource,
		BucketWidth: cfg.BucketWidth,
		IgnoreAAAA:  !cfg.AnalyzeAAAA,
		SelfName:    cfg.SelfName,
		Reserve:     cfg.InitialCapacity,
	}

	if cfg.WildcardList != "" {
		repo, err := buildWildcardRepository(cfg, logger, clk)
		if err != nil {
			return nil, fmt.Errorf("failed to build wildcard repository: %w", err)
		}
		app.wildcards = repo
		opts.Matcher = repo
		opts.Reloader = repo
	} else {
		logger.Info(map[string]any{"disabled": true}, "Wildcard detection disabled")
	}

	agg, err := classifier.New(opts)
	if err != nil {
		app.closeWildcards()
		return nil, fmt.Errorf("failed to build aggregator: %w", err)
	}
	app.aggregator = agg

	if cfg.MetricsAddr != "" {
		var repoStats metrics.RepoStatsSource
		if app.wildcards != nil {
			repoStats = app.wildcards
		}
		reg, err := metrics.NewRegistry(metrics.NewCollector(agg, repoStats))
		if err != nil {
			app.closeWildcards()
			return nil, fmt.Errorf("failed to build metrics registry: %w", err)
		}
		app.metrics = metrics.NewServer(cfg.MetricsAddr, reg, logger)
	}

	if cfg.IngestAddr != "" {
		app.ingest = ingest.NewUDPListener(cfg.IngestAddr, logger)
	}

	return app, nil
}

// buildWildcardRepository wires the bbolt store, the decision cache and the
// bloom factory behind a file loader for the configured list.
func buildWildcardRepository(cfg *config.AppConfig, logger log.Logger, clk clock.Clock) (wildcard.Repository, error) {
	loader, err := parsers.FileLoader(cfg.WildcardList, cfg.WildcardFormat, logger, clk)
	if err != nil {
		return nil, err
	}
	store, err := bolt.New(cfg.WildcardDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open wildcard store: %w", err)
	}
	cache, err := lru.New(cfg.DecisionCache)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create decision cache: %w", err)
	}
	repo, err := wildcard.NewRepository(wildcard.Options{
		Store:   store,
		Cache:   cache,
		Factory: bloom.NewFactory(),
		FPRate:  cfg.BloomFPRate,
		Loader:  loader,
		Clock:   clk,
		Logger:  logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info(map[string]any{
		"list":       cfg.WildcardList,
		"format":     cfg.WildcardFormat,
		"db":         cfg.WildcardDB,
		"cache_size": cfg.DecisionCache,
	}, "Wildcard repository configured")
	return repo, nil
}

// readBlockLists counts the entries of each configured block list and
// reports them to the aggregator.
func (app *Application) readBlockLists() {
	for _, path := range app.config.BlockLists {
		f, err := os.Open(path)
		if err != nil {
			app.logger.Warn(map[string]any{"path": path, "error": err.Error()}, "Block list unreadable")
			continue
		}
		n, err := parsers.CountHostsEntries(f)
		_ = f.Close()
		if err != nil {
			app.logger.Warn(map[string]any{"path": path, "error": err.Error()}, "Block list unreadable")
			continue
		}
		app.aggregator.ReadHosts(path, n)
	}
}

// replayEventLog feeds the configured event log into the aggregator.
func (app *Application) replayEventLog(ctx context.Context) error {
	f, err := os.Open(app.config.EventLog)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()
	res, err := eventlog.Replay(ctx, f, app.aggregator, app.logger)
	app.logger.Info(map[string]any{
		"path":    app.config.EventLog,
		"applied": res.Applied,
		"skipped": res.Skipped,
	}, "Event log replayed")
	return err
}

// logSummary writes the current counters to the log.
func (app *Application) logSummary() {
	c := app.aggregator.Counters()
	app.logger.Info(map[string]any{
		"queries":        c.Queries,
		"unknown":        c.Unknown,
		"forwarded":      c.Forwarded,
		"cached":         c.Cached,
		"blocked":        c.Blocked(),
		"gravity_domain": c.GravityDomains,
		"skipped":        c.Skipped,
	}, "Counters summary")
}

func (app *Application) closeWildcards() {
	if app.wildcards == nil {
		return
	}
	if err := app.wildcards.Close(); err != nil {
		app.logger.Warn(map[string]any{"error": err.Error()}, "Error closing wildcard repository")
	}
}

// Run loads the lists, starts the metrics endpoint, replays the event log,
// then receives live events until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	defer app.closeWildcards()

	app.aggregator.Reload()
	app.readBlockLists()

	if app.metrics != nil {
		addr, err := app.metrics.Start()
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		app.logger.Info(map[string]any{"address": addr.String()}, "Metrics endpoint started")
	}

	if app.config.EventLog != "" {
		if err := app.replayEventLog(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.logger.Error(map[string]any{"error": err.Error()}, "Event log replay failed")
		}
	}

	if app.ingest != nil {
		if err := app.ingest.Start(ctx, app.aggregator); err != nil {
			return fmt.Errorf("failed to start event ingest: %w", err)
		}
		defer func() {
			if err := app.ingest.Stop(); err != nil {
				app.logger.Warn(map[string]any{"error": err.Error()}, "Error during ingest shutdown")
			}
		}()
	}

	var tick <-chan time.Time
	if app.config.SummaryInterval > 0 {
		ticker := time.NewTicker(app.config.SummaryInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for {
		select {
		case <-tick:
			app.logSummary()
		case <-ctx.Done():
			break loop
		}
	}

	app.logger.Info(nil, "Shutdown initiated")
	app.logSummary()

	if app.metrics == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := app.metrics.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn(map[string]any{"timeout": defaultShutdownTimeout.String(), "error": err.Error()}, "Metrics shutdown did not complete")
		return fmt.Errorf("shutdown timeout: %w", err)
	}
	return nil
}
