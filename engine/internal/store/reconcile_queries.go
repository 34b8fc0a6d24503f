package store

import (
	"context"
	"database/sql"
)

// ActiveProviderIDs lists provider_posting_id for every ACTIVE posting of a
// given source kind, used by the deactivation reconciler (§4.7) to compute
// what to close.
func ActiveProviderIDs(ctx context.Context, db *sql.DB, kind string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
SELECT provider_posting_id FROM postings WHERE source_kind = ? AND status = 'ACTIVE';`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ClosePosting transitions one ACTIVE posting to CLOSED, recording the
// closure time (§4.10: ACTIVE -> CLOSED).
func ClosePosting(ctx context.Context, db *sql.DB, kind, providerPostingID, closedAt string) error {
	_, err := db.ExecContext(ctx, `
UPDATE postings
SET status = 'CLOSED', closed_at = ?
WHERE source_kind = ? AND provider_posting_id = ? AND status = 'ACTIVE';`,
		closedAt, kind, providerPostingID)
	return err
}
