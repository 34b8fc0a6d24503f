package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"jobingest/internal/domain"
	"jobingest/internal/filterconfig"
)

type fakeSink struct {
	mu       sync.Mutex
	seen     []string
	failIDs  map[string]bool
}

func (f *fakeSink) Process(_ context.Context, _ domain.SourceKind, _ domain.SourceDescriptor, raw domain.RawPosting) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, raw.ProviderPostingID)
	if f.failIDs[raw.ProviderPostingID] {
		return false, errors.New("boom")
	}
	return true, nil
}

func TestRunPostingPool_RecordsAllIdsBeforeFiltering(t *testing.T) {
	postings := []domain.RawPosting{
		{ProviderPostingID: "1", IsListed: true, PrimaryLocation: "Remote - Brazil"},
		{ProviderPostingID: "2", IsListed: false},
		{ProviderPostingID: "3", IsListed: true, PrimaryLocation: "Onsite NYC only"},
	}
	cfg := &filterconfig.FilterConfig{
		LocationKeywords: filterconfig.LocationKeywords{
			StrongPositiveLatam: []string{"remote - brazil"},
		},
	}
	sink := &fakeSink{}

	res := RunPostingPool(context.Background(), domain.SourceGreenhouse, domain.SourceDescriptor{}, postings, cfg, nil, sink)

	require.Equal(t, 3, res.JobsFound)
	require.Len(t, res.FoundProviderIDs, 3)
	require.Contains(t, res.FoundProviderIDs, "2")
	require.Equal(t, 1, res.JobsRelevant)
	require.Equal(t, 1, res.JobsProcessed)
	require.Equal(t, []string{"1"}, sink.seen)
}

func TestRunPostingPool_DiscardsEmptyProviderID(t *testing.T) {
	postings := []domain.RawPosting{{ProviderPostingID: "", IsListed: true}}
	sink := &fakeSink{}

	res := RunPostingPool(context.Background(), domain.SourceLever, domain.SourceDescriptor{}, postings, nil, nil, sink)
	require.Equal(t, 0, res.JobsFound)
	require.Empty(t, res.FoundProviderIDs)
}

func TestRunPostingPool_SinkErrorsCountedNotFatal(t *testing.T) {
	postings := []domain.RawPosting{
		{ProviderPostingID: "1", IsListed: true, IsRemote: boolPtr(true)},
		{ProviderPostingID: "2", IsListed: true, IsRemote: boolPtr(true)},
	}
	sink := &fakeSink{failIDs: map[string]bool{"1": true}}

	res := RunPostingPool(context.Background(), domain.SourceAshby, domain.SourceDescriptor{}, postings, nil, nil, sink)
	require.Equal(t, 2, res.JobsRelevant)
	require.Equal(t, 1, res.JobsErrored)
	require.Equal(t, 1, res.JobsProcessed)
	require.Equal(t, "boom", res.ErrorMessage)
}

func boolPtr(b bool) *bool { return &b }
