// Package telemetry implements C9: deriving a run's status and persisting
// one SourceRunStats row per source, per §4.9. Grounded on the teacher's
// ScrapeStatus derivation in cmd/engine/main.go and store.Migrate's plain
// SQL insert idiom.
package telemetry

import (
	"context"
	"database/sql"
	"time"

	"jobingest/internal/domain"
	"jobingest/internal/store"
)

const maxErrorMessageLen = 1000

// RunOutcome is what the orchestrator measured for one source's fetch.
type RunOutcome struct {
	JobSourceID  int64
	RunStarted   time.Time
	RunEnded     time.Time
	JobsFound    int
	JobsRelevant int
	JobsProcessed int
	JobsErrored  int
	FetchErr     error // non-nil => whole-source transport/config failure
	ErrorMessage string
}

// DeriveStatus implements §4.9's three-way split: a whole-source fetch
// failure is FAILURE; any per-posting errors without a fetch failure is
// PARTIAL_SUCCESS; anything else is SUCCESS.
func DeriveStatus(o RunOutcome) domain.RunStatus {
	if o.FetchErr != nil {
		return domain.RunFailure
	}
	if o.JobsErrored > 0 {
		return domain.RunPartialSuccess
	}
	return domain.RunSuccess
}

// Record builds and persists the SourceRunStats row for one source's run.
func Record(ctx context.Context, db *sql.DB, o RunOutcome) error {
	status := DeriveStatus(o)

	msg := o.ErrorMessage
	if o.FetchErr != nil && msg == "" {
		msg = o.FetchErr.Error()
	}
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}

	stats := domain.SourceRunStats{
		JobSourceID:   o.JobSourceID,
		RunStartedAt:  o.RunStarted,
		RunEndedAt:    o.RunEnded,
		Status:        status,
		JobsFound:     o.JobsFound,
		JobsRelevant:  o.JobsRelevant,
		JobsProcessed: o.JobsProcessed,
		JobsErrored:   o.JobsErrored,
		ErrorMessage:  msg,
		DurationMs:    o.RunEnded.Sub(o.RunStarted).Milliseconds(),
	}

	return store.InsertRunStats(ctx, db, stats)
}
