package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"jobingest/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestResolveOrCreateCompany_CaseInsensitiveDedup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id1, err := ResolveOrCreateCompany(ctx, db, "Acme Inc", "", "")
	require.NoError(t, err)

	id2, err := ResolveOrCreateCompany(ctx, db, "ACME INC", "https://acme.example", "")
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	_, _, website, err := GetCompany(ctx, db, id1)
	require.NoError(t, err)
	require.Equal(t, "https://acme.example", website)
}

func TestResolveOrCreateCompany_DoesNotOverwriteExistingWebsite(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := ResolveOrCreateCompany(ctx, db, "Acme", "https://first.example", "")
	require.NoError(t, err)

	_, err = ResolveOrCreateCompany(ctx, db, "Acme", "https://second.example", "")
	require.NoError(t, err)

	_, _, website, err := GetCompany(ctx, db, id)
	require.NoError(t, err)
	require.Equal(t, "https://first.example", website)
}

func TestUpsertPosting_InsertsThenUpdatesSamePosting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	companyID, err := ResolveOrCreateCompany(ctx, db, "Acme", "", "")
	require.NoError(t, err)

	p := domain.CanonicalPosting{
		SourceKind:            domain.SourceGreenhouse,
		ProviderPostingID:     "1",
		CompanyID:             companyID,
		Title:                 "Engineer",
		NormalizedFingerprint: "engineer acme",
	}

	saved, err := UpsertPosting(ctx, db, p)
	require.NoError(t, err)
	require.True(t, saved)

	p.Title = "Senior Engineer"
	saved, err = UpsertPosting(ctx, db, p)
	require.NoError(t, err)
	require.True(t, saved)

	var title, status string
	err = db.QueryRowContext(ctx, `SELECT title, status FROM postings WHERE source_kind=? AND provider_posting_id=?;`,
		string(domain.SourceGreenhouse), "1").Scan(&title, &status)
	require.NoError(t, err)
	require.Equal(t, "Senior Engineer", title)
	require.Equal(t, "ACTIVE", status)

	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings;`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUpsertPosting_SkipsDuplicateFingerprintUnderDifferentID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	companyID, err := ResolveOrCreateCompany(ctx, db, "Acme", "", "")
	require.NoError(t, err)

	first := domain.CanonicalPosting{
		SourceKind: domain.SourceGreenhouse, ProviderPostingID: "1", CompanyID: companyID,
		Title: "Engineer", NormalizedFingerprint: "engineer acme",
	}
	saved, err := UpsertPosting(ctx, db, first)
	require.NoError(t, err)
	require.True(t, saved)

	dup := first
	dup.ProviderPostingID = "2"
	saved, err = UpsertPosting(ctx, db, dup)
	require.NoError(t, err)
	require.False(t, saved)

	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings WHERE provider_posting_id='2';`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestUpsertPosting_ResurrectsClosedRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	companyID, err := ResolveOrCreateCompany(ctx, db, "Acme", "", "")
	require.NoError(t, err)

	p := domain.CanonicalPosting{
		SourceKind: domain.SourceLever, ProviderPostingID: "9", CompanyID: companyID,
		Title: "Engineer", NormalizedFingerprint: "engineer acme",
	}
	_, err = UpsertPosting(ctx, db, p)
	require.NoError(t, err)

	require.NoError(t, ClosePosting(ctx, db, string(domain.SourceLever), "9", "2024-01-01T00:00:00Z"))

	var status string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT status FROM postings WHERE provider_posting_id='9';`).Scan(&status))
	require.Equal(t, "CLOSED", status)

	_, err = UpsertPosting(ctx, db, p)
	require.NoError(t, err)
	require.NoError(t, db.QueryRowContext(ctx, `SELECT status FROM postings WHERE provider_posting_id='9';`).Scan(&status))
	require.Equal(t, "ACTIVE", status)
}

func TestActiveProviderIDsAndClosePosting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	companyID, err := ResolveOrCreateCompany(ctx, db, "Acme", "", "")
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		_, err := UpsertPosting(ctx, db, domain.CanonicalPosting{
			SourceKind: domain.SourceAshby, ProviderPostingID: id, CompanyID: companyID, Title: "x",
		})
		require.NoError(t, err)
	}

	ids, err := ActiveProviderIDs(ctx, db, string(domain.SourceAshby))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, ClosePosting(ctx, db, string(domain.SourceAshby), "a", "2024-01-01T00:00:00Z"))
	ids, err = ActiveProviderIDs(ctx, db, string(domain.SourceAshby))
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids)
}

func TestListEnabledSources(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := InsertSource(ctx, db, domain.SourceDescriptor{
		Kind: domain.SourceGreenhouse, DisplayName: "Acme", Config: map[string]any{"boardToken": "acme"}, Enabled: true,
	})
	require.NoError(t, err)
	_, err = InsertSource(ctx, db, domain.SourceDescriptor{
		Kind: domain.SourceLever, DisplayName: "Disabled Co", Enabled: false,
	})
	require.NoError(t, err)

	srcs, err := ListEnabledSources(ctx, db)
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	require.Equal(t, "Acme", srcs[0].DisplayName)
	require.Equal(t, "acme", srcs[0].Config["boardToken"])
}
