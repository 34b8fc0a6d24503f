// Package orchestrator implements C8: loading enabled sources, dispatching
// fetchers with bounded concurrency, aggregating results, and invoking C7
// (deactivation) and C9 (telemetry) once all fetches have returned.
// Grounded on the teacher's internal/poll/poll_once.go::PollOnce, which
// drives an errgroup.Group with stopOnError=false semantics; the outer
// dispatch loop here is that same shape regrounded on SourceDescriptor and
// the ingest.Fetcher capability interface.
package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobingest/internal/domain"
	"jobingest/internal/events"
	"jobingest/internal/ingest"
	"jobingest/internal/reconcile"
	"jobingest/internal/store"
	"jobingest/internal/telemetry"
)

const defaultConcurrency = 5

// Summary is the run-wide aggregate the CLI reports and exits on.
type Summary struct {
	SourcesProcessed int
	SourcesFailed    int
	JobsFound        int
	JobsRelevant     int
	JobsProcessed    int
	JobsErrored      int
	PostingsClosed   int
}

type Orchestrator struct {
	DB          *sql.DB
	Registry    ingest.Registry
	Concurrency int
	Log         *slog.Logger
	Hub         *events.Hub
}

// Run implements §4.8: load sources, dispatch with bounded concurrency,
// reconcile per kind, write telemetry per source, publish a refresh event.
// The returned error is reserved for orchestrator-fatal conditions (§7
// kind 6) — loading the source list or a telemetry write failing; no
// per-source failure ever surfaces here.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	log := o.Log
	if log != nil {
		log = log.With("runId", runID)
	}

	concurrency := o.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	sources, err := store.ListEnabledSources(ctx, o.DB)
	if err != nil {
		return Summary{}, err
	}

	var (
		mu      sync.Mutex
		summary Summary
		seen    = make(map[domain.SourceKind]map[string]struct{})
		eligible = make(map[domain.SourceKind]bool)
	)

	sem := make(chan struct{}, concurrency)
	g, gctx := errgroup.WithContext(ctx)
	var telemetryErrs []error

	for _, src := range sources {
		src := src
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			if terr := o.runOne(gctx, src, log, &mu, &summary, seen, eligible); terr != nil {
				mu.Lock()
				telemetryErrs = append(telemetryErrs, terr)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	closedTotal := 0
	for kind, ok := range eligible {
		if !ok {
			continue
		}
		closed, cerr := reconcile.Reconcile(ctx, o.DB, kind, seen[kind], time.Now().UTC().Format(time.RFC3339))
		if cerr != nil {
			if log != nil {
				log.Error("reconcile failed", "kind", kind, "error", cerr)
			}
			continue
		}
		closedTotal += closed
	}
	summary.PostingsClosed = closedTotal

	if o.Hub != nil {
		o.Hub.Publish(events.MakeEvent(runID, "jobs.refreshed", 1, summary))
	}

	// §7 kind 6: a telemetry write failure is orchestrator-fatal — it means
	// the run stats table can no longer be trusted, even though every
	// individual source fetch may have succeeded.
	if len(telemetryErrs) > 0 {
		return summary, errors.Join(telemetryErrs...)
	}

	return summary, nil
}

// runOne fetches and records telemetry for a single source, folding its
// result into the shared summary/seen-set/eligibility maps under mu. It
// returns a non-nil error only when writing telemetry itself fails — an
// orchestrator-fatal condition the caller collects and surfaces from Run.
func (o *Orchestrator) runOne(
	ctx context.Context,
	src domain.SourceDescriptor,
	log *slog.Logger,
	mu *sync.Mutex,
	summary *Summary,
	seen map[domain.SourceKind]map[string]struct{},
	eligible map[domain.SourceKind]bool,
) error {
	started := time.Now().UTC()

	fetcher, ok := o.Registry[src.Kind]
	if !ok {
		return o.recordFailure(ctx, src, started, "no fetcher registered for source kind", log, mu, summary, eligible)
	}

	res, fetchErr := fetcher.Fetch(ctx, src, log)
	ended := time.Now().UTC()

	mu.Lock()
	summary.SourcesProcessed++
	summary.JobsFound += res.JobsFound
	summary.JobsRelevant += res.JobsRelevant
	summary.JobsProcessed += res.JobsProcessed
	summary.JobsErrored += res.JobsErrored
	if fetchErr != nil {
		summary.SourcesFailed++
		if _, ok := eligible[src.Kind]; !ok {
			eligible[src.Kind] = false
		}
	} else {
		eligible[src.Kind] = true
		if seen[src.Kind] == nil {
			seen[src.Kind] = make(map[string]struct{})
		}
		for id := range res.FoundProviderIDs {
			seen[src.Kind][id] = struct{}{}
		}
	}
	mu.Unlock()

	if err := telemetry.Record(ctx, o.DB, telemetry.RunOutcome{
		JobSourceID:   src.ID,
		RunStarted:    started,
		RunEnded:      ended,
		JobsFound:     res.JobsFound,
		JobsRelevant:  res.JobsRelevant,
		JobsProcessed: res.JobsProcessed,
		JobsErrored:   res.JobsErrored,
		FetchErr:      fetchErr,
		ErrorMessage:  res.ErrorMessage,
	}); err != nil {
		if log != nil {
			log.Error("telemetry write failed", "sourceId", src.ID, "error", err)
		}
		return fmt.Errorf("record telemetry for source %d: %w", src.ID, err)
	}
	return nil
}

func (o *Orchestrator) recordFailure(
	ctx context.Context,
	src domain.SourceDescriptor,
	started time.Time,
	msg string,
	log *slog.Logger,
	mu *sync.Mutex,
	summary *Summary,
	eligible map[domain.SourceKind]bool,
) error {
	mu.Lock()
	summary.SourcesProcessed++
	summary.SourcesFailed++
	if _, ok := eligible[src.Kind]; !ok {
		eligible[src.Kind] = false
	}
	mu.Unlock()

	if log != nil {
		log.Error(msg, "fetcher", src.Kind, "sourceId", src.ID, "sourceName", src.DisplayName)
	}

	if err := telemetry.Record(ctx, o.DB, telemetry.RunOutcome{
		JobSourceID: src.ID,
		RunStarted:  started,
		RunEnded:    time.Now().UTC(),
		FetchErr:    errors.New(msg),
	}); err != nil {
		if log != nil {
			log.Error("telemetry write failed", "sourceId", src.ID, "error", err)
		}
		return fmt.Errorf("record telemetry for source %d: %w", src.ID, err)
	}
	return nil
}
