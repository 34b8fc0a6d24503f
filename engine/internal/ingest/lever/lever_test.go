package lever

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"jobingest/internal/domain"
)

type stubSink struct {
	mu    sync.Mutex
	calls []domain.RawPosting
}

func (s *stubSink) Process(_ context.Context, _ domain.SourceKind, _ domain.SourceDescriptor, raw domain.RawPosting) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, raw)
	return true, nil
}

func TestFetch_MissingCompanyIdentifierErrors(t *testing.T) {
	f := New(nil, nil, &stubSink{})
	res, err := f.Fetch(context.Background(), domain.SourceDescriptor{DisplayName: "acme"}, nil)
	require.Error(t, err)
	require.Equal(t, 1, res.JobsErrored)
}

func TestFetch_ParsesPostingsAndAllLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"id": "p1",
				"text": "Senior Engineer",
				"hostedUrl": "https://jobs.lever.co/acme/p1",
				"createdAt": 1700000000000,
				"categories": {"location": "Remote - LATAM", "allLocations": ["Brazil", "Argentina"]},
				"description": "<p>desc</p>",
				"workplaceType": "remote"
			}
		]`))
	}))
	defer srv.Close()

	sink := &stubSink{}
	f := New(nil, nil, sink)
	f.baseURL = srv.URL

	res, err := f.Fetch(context.Background(), domain.SourceDescriptor{Config: map[string]any{"companyIdentifier": "acme"}}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.JobsFound)
	require.Contains(t, res.FoundProviderIDs, "p1")
}

func TestWorkplaceTypeOf(t *testing.T) {
	require.Equal(t, domain.WorkplaceRemote, workplaceTypeOf("Remote"))
	require.Equal(t, domain.WorkplaceHybrid, workplaceTypeOf("hybrid"))
	require.Equal(t, domain.WorkplaceOnsite, workplaceTypeOf("on-site"))
	require.Equal(t, domain.WorkplaceType(""), workplaceTypeOf("unknown"))
}

func TestToRawPosting_AppendsListsToBodyHTMLAndBodyText(t *testing.T) {
	f := New(nil, nil, nil)
	p := leverPosting{
		ID:               "p2",
		Text:             "Engineer",
		Description:      "<p>base</p>",
		DescriptionPlain: "base",
	}
	p.Lists = []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	}{{Text: "Requirements", Content: "<li>Go</li>"}}

	raw := f.toRawPosting(p)
	require.Contains(t, raw.BodyHTML, "base")
	require.Contains(t, raw.BodyHTML, "Requirements")
	require.Contains(t, raw.BodyHTML, "<li>Go</li>")

	// BodyText must carry the Lists content too, since contentCheck scans
	// BodyText whenever it is non-empty and never falls back to BodyHTML.
	require.Contains(t, raw.BodyText, "base")
	require.Contains(t, raw.BodyText, "Requirements")
	require.Contains(t, raw.BodyText, "Go")
	require.NotContains(t, raw.BodyText, "<li>")
}
