// Package reconcile implements C7: closing out canonical postings that a
// successful fetch no longer reported, per §4.7.
package reconcile

import (
	"context"
	"database/sql"

	"jobingest/internal/domain"
	"jobingest/internal/store"
)

// Reconcile closes every ACTIVE posting for kind whose provider id is not
// in seen. Only call this for a source whose fetch completed without a
// transport/config error — a partial or failed fetch must never be allowed
// to look like postings disappeared.
func Reconcile(ctx context.Context, db *sql.DB, kind domain.SourceKind, seen map[string]struct{}, closedAt string) (closed int, err error) {
	activeIDs, err := store.ActiveProviderIDs(ctx, db, string(kind))
	if err != nil {
		return 0, err
	}

	for _, id := range activeIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := store.ClosePosting(ctx, db, string(kind), id, closedAt); err != nil {
			return closed, err
		}
		closed++
	}

	return closed, nil
}
