// Command fetch-job-sources runs one ingestion pass over every enabled
// source: fetch, filter, map, upsert, reconcile, record telemetry. No
// arguments; exit 0 on orchestrator completion, exit 1 on an
// orchestrator-fatal failure (§6, §7 kind 6). Reuses the teacher's thin
// main()/run() split from cmd/engine/main.go.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lmittmann/tint"

	"jobingest/internal/adapter"
	"jobingest/internal/config"
	"jobingest/internal/events"
	"jobingest/internal/ingest"
	"jobingest/internal/ingest/ashby"
	"jobingest/internal/ingest/greenhouse"
	"jobingest/internal/ingest/lever"
	"jobingest/internal/ingest/ratelimit"
	"jobingest/internal/filterconfig"
	"jobingest/internal/orchestrator"
	"jobingest/internal/store"
)

func main() {
	log := newLogger()
	summary, err := run(context.Background(), log)
	if err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
	log.Info("run complete",
		"sourcesProcessed", summary.SourcesProcessed,
		"sourcesFailed", summary.SourcesFailed,
		"jobsFound", summary.JobsFound,
		"jobsRelevant", summary.JobsRelevant,
		"jobsProcessed", summary.JobsProcessed,
		"jobsErrored", summary.JobsErrored,
		"postingsClosed", summary.PostingsClosed,
	)
}

func run(ctx context.Context, log *slog.Logger) (orchestrator.Summary, error) {
	dataDir := os.Getenv("JOBINGEST_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return orchestrator.Summary{}, fmt.Errorf("create data dir: %w", err)
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, "config/jobingest.yml")
	if err != nil {
		return orchestrator.Summary{}, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return orchestrator.Summary{}, fmt.Errorf("config load: %w", err)
	}
	if _, v := config.NormalizeAndValidate(cfg); !v.OK() {
		return orchestrator.Summary{}, fmt.Errorf("invalid config: %v", v.Errors)
	}

	sdb, err := store.Open(cfg.App.DBPath)
	if err != nil {
		return orchestrator.Summary{}, fmt.Errorf("open db: %w", err)
	}
	defer sdb.Close()
	db := sdb.Pool

	if err := store.Migrate(db); err != nil {
		return orchestrator.Summary{}, fmt.Errorf("migrate db: %w", err)
	}

	if sources, serr := config.LoadSources("config/sources.yml"); serr == nil {
		if err := store.SeedSourcesIfEmpty(ctx, db, sources); err != nil {
			return orchestrator.Summary{}, fmt.Errorf("seed sources: %w", err)
		}
	}

	limiter := ratelimit.NewHostLimiter(1.0, 2)
	cfgs := filterconfig.NewLoader(cfg.FilterConfigDir, log)
	sink := adapter.New(db, cfg, log)

	registry := ingest.NewRegistry(
		greenhouse.New(limiter, cfgs, sink),
		ashby.New(limiter, cfgs, sink),
		lever.New(limiter, cfgs, sink),
	)

	o := &orchestrator.Orchestrator{
		DB:          db,
		Registry:    registry,
		Concurrency: fetchConcurrency(),
		Log:         log,
		Hub:         events.NewHub(),
	}

	return o.Run(ctx)
}

func fetchConcurrency() int {
	raw := os.Getenv("FETCH_CONCURRENCY")
	if raw == "" {
		return 5
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 5
	}
	return n
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	return slog.New(handler)
}
