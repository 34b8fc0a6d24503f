package store

import (
	"context"
	"database/sql"

	"jobingest/internal/domain"
)

// InsertRunStats writes one SourceRunStats row (§4.9).
func InsertRunStats(ctx context.Context, db *sql.DB, s domain.SourceRunStats) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO source_run_stats(
  job_source_id, run_started_at, run_ended_at, status,
  jobs_found, jobs_relevant, jobs_processed, jobs_errored,
  error_message, duration_ms
) VALUES (?,?,?,?, ?,?,?,?, ?,?);`,
		s.JobSourceID, s.RunStartedAt.Format("2006-01-02T15:04:05Z07:00"), s.RunEndedAt.Format("2006-01-02T15:04:05Z07:00"), string(s.Status),
		s.JobsFound, s.JobsRelevant, s.JobsProcessed, s.JobsErrored,
		s.ErrorMessage, s.DurationMs,
	)
	return err
}
