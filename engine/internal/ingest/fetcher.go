// Package ingest defines the common fetcher contract every ATS provider
// implementation satisfies, and the registry the orchestrator dispatches
// through (§4.5, §9's "inheritance becomes a capability interface" note).
package ingest

import (
	"context"
	"log/slog"

	"jobingest/internal/domain"
)

// Result is what a single source fetch produces: the run counters the
// orchestrator aggregates, plus the full set of provider posting ids seen
// this run (needed by the deactivation reconciler regardless of filtering).
type Result struct {
	JobsFound     int
	JobsRelevant  int
	JobsProcessed int
	JobsErrored   int
	ErrorMessage  string

	FoundProviderIDs map[string]struct{}
}

// Fetcher is the capability every provider-specific scraper implements.
// Validate/construct-URL/HTTP-GET/iterate/relevance/adapter-dispatch all
// happen inside Fetch; Fetch itself never returns an error for per-posting
// problems, only for conditions that invalidate the whole source (§4.5,
// §7).
type Fetcher interface {
	Kind() domain.SourceKind
	Fetch(ctx context.Context, src domain.SourceDescriptor, log *slog.Logger) (Result, error)
}

// Registry maps a source kind to its fetcher implementation, built once at
// startup (§9).
type Registry map[domain.SourceKind]Fetcher

func NewRegistry(fetchers ...Fetcher) Registry {
	r := make(Registry, len(fetchers))
	for _, f := range fetchers {
		r[f.Kind()] = f
	}
	return r
}
