package reconcile

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"jobingest/internal/domain"
	"jobingest/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))
	return db
}

func TestReconcile_ClosesPostingsNotInSeenSet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	companyID, err := store.ResolveOrCreateCompany(ctx, db, "Acme", "", "")
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, err := store.UpsertPosting(ctx, db, domain.CanonicalPosting{
			SourceKind: domain.SourceGreenhouse, ProviderPostingID: id, CompanyID: companyID, Title: "x",
		})
		require.NoError(t, err)
	}

	seen := map[string]struct{}{"a": {}, "c": {}}
	closed, err := Reconcile(ctx, db, domain.SourceGreenhouse, seen, "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	remaining, err := store.ActiveProviderIDs(ctx, db, string(domain.SourceGreenhouse))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "c"}, remaining)
}

func TestReconcile_NoopWhenAllSeen(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	companyID, err := store.ResolveOrCreateCompany(ctx, db, "Acme", "", "")
	require.NoError(t, err)

	_, err = store.UpsertPosting(ctx, db, domain.CanonicalPosting{
		SourceKind: domain.SourceLever, ProviderPostingID: "1", CompanyID: companyID, Title: "x",
	})
	require.NoError(t, err)

	closed, err := Reconcile(ctx, db, domain.SourceLever, map[string]struct{}{"1": {}}, "2024-01-01T00:00:00Z")
	require.NoError(t, err)
	require.Equal(t, 0, closed)
}
