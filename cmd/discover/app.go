package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rawhoneyguide/honeyscout/internal/cloudsql"
	"github.com/rawhoneyguide/honeyscout/internal/config"
	"github.com/rawhoneyguide/honeyscout/internal/database"
	"github.com/rawhoneyguide/honeyscout/internal/discovery"
	"github.com/rawhoneyguide/honeyscout/internal/ingestion"
	"github.com/rawhoneyguide/honeyscout/internal/metrics"
	"github.com/rawhoneyguide/honeyscout/internal/report"
	"github.com/rawhoneyguide/honeyscout/internal/runlock"
	"github.com/rawhoneyguide/honeyscout/internal/scheduler"
	"github.com/rawhoneyguide/honeyscout/internal/server"
	"github.com/rawhoneyguide/honeyscout/internal/validation"
)

// failureReportTimeout bounds the best-effort failure email.
const failureReportTimeout = time.Minute

type app struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	sender  report.Sender
	dryRun  bool
	migrate bool
}

// runOnce performs one guarded discovery run. Any error returned has already
// been reported by email (best effort) and logged.
func (a *app) runOnce(ctx context.Context) error {
	start := time.Now()

	locker, err := runlock.New(a.cfg.RunLock.RedisURL, a.cfg.RunLock.TTL)
	if err != nil {
		return a.fail(ctx, ingestion.Outcome{}, start, err)
	}
	defer locker.Close()

	lease, err := locker.Acquire(ctx)
	if errors.Is(err, runlock.ErrHeld) {
		a.logger.Warn("another discovery run is in progress, skipping")
		return nil
	}
	if err != nil {
		return a.fail(ctx, ingestion.Outcome{}, start, err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to release run lock", "error", err)
		}
	}()

	outcome, err := a.execute(ctx)
	if err != nil {
		return a.fail(ctx, outcome, start, err)
	}

	a.metrics.ObserveRun(time.Since(start), nil)
	a.pushMetrics(ctx)
	a.logger.Info("event discovery completed successfully",
		"new", len(outcome.NewEvents),
		"duplicates", outcome.Duplicates,
		"duration", time.Since(start),
	)
	return nil
}

// execute owns the datastore handle for the length of one run.
func (a *app) execute(ctx context.Context) (ingestion.Outcome, error) {
	a.logger.Info("database configuration", "config", cloudsql.Describe(a.cfg.Database.Connection))

	dbCfg := database.DefaultConfig()
	dbCfg.URL = a.cfg.Database.URL
	dbCfg.ConnectTimeout = a.cfg.Database.ConnectTimeout

	db, err := database.Connect(ctx, dbCfg)
	if err != nil {
		return ingestion.Outcome{}, fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		db.Close()
		a.logger.Info("database connection closed")
	}()
	a.logger.Info("connected to database")

	if a.migrate {
		if err := database.Migrate(db, a.logger); err != nil {
			return ingestion.Outcome{}, err
		}
	}

	queries, err := discovery.LoadQueries(a.cfg.Discovery.QueriesFile)
	if err != nil {
		return ingestion.Outcome{}, err
	}

	clientCfg := discovery.ClientConfig{
		Provider:    a.cfg.Discovery.Provider,
		APIKey:      a.cfg.Discovery.APIKey,
		Model:       a.cfg.Discovery.Model,
		MaxTokens:   a.cfg.Discovery.MaxTokens,
		MaxSearches: a.cfg.Discovery.MaxSearches,
		MaxEvents:   a.cfg.Discovery.MaxEvents,
		Timeout:     a.cfg.Discovery.RequestTimeout,
	}
	if clientCfg.Model == "" {
		clientCfg.Model = discovery.DefaultModel(clientCfg.Provider)
	}

	searcher, err := discovery.NewSearcher(clientCfg, a.logger)
	if err != nil {
		return ingestion.Outcome{}, err
	}

	repo := database.NewPostgresEventRepository(db)

	pipelineCfg := ingestion.DefaultPipelineConfig()
	pipelineCfg.Queries = queries
	pipelineCfg.DryRun = a.dryRun

	pipeline := ingestion.NewPipeline(
		discovery.NewDispatcher(searcher, a.cfg.Discovery.QueryInterval, a.logger),
		validation.NewValidator(),
		repo,
		ingestion.NewPersister(repo, discovery.VerificationSource(clientCfg.Provider)),
		a.sender,
		a.metrics,
		a.logger,
		pipelineCfg,
	)

	return pipeline.Run(ctx)
}

// fail sends the failure report, records the failed run and returns err.
func (a *app) fail(ctx context.Context, outcome ingestion.Outcome, start time.Time, err error) error {
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureReportTimeout)
	defer cancel()

	ingestion.ReportFailure(reportCtx, a.sender, a.logger, outcome, err)
	a.metrics.ObserveRun(time.Since(start), err)
	a.pushMetrics(reportCtx)
	return err
}

func (a *app) pushMetrics(ctx context.Context) {
	if err := a.metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL); err != nil {
		a.logger.Warn("failed to push metrics", "error", err)
	}
}

// serve runs discovery on the configured schedule and exposes health and
// metrics until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	sched, err := scheduler.NewDiscoveryScheduler(a.cfg.Schedule, a.runOnce, a.logger)
	if err != nil {
		a.logger.Error("failed to create scheduler", "error", err)
		return err
	}

	health := func(ctx context.Context) error {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = a.cfg.Database.URL
		dbCfg.ConnectTimeout = a.cfg.Database.ConnectTimeout
		db, err := database.Connect(ctx, dbCfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return database.HealthCheck(ctx, db)
	}

	srv := server.New(a.cfg.Server, a.cfg.Schedule, server.NewRouter(a.metrics, health, sched.LastRun), a.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	served := make(chan error, 1)
	go func() {
		err := srv.Run(ctx)
		if err != nil {
			a.logger.Error("server failed", "error", err)
			cancel()
		}
		served <- err
	}()

	if err := sched.Start(ctx); err != nil {
		a.logger.Error("scheduler failed", "error", err)
		cancel()
		<-served
		return err
	}

	cancel()
	return <-served
}
