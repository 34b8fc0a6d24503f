// Package greenhouse fetches a board's postings from the Greenhouse JSON
// board API. Adapted from the teacher's internal/scrape/lever worker-pool
// shape (internal/scrape/lever/lever.go: fetchCompany/workCh/jobsCh), but
// talks to Greenhouse's structured jobs endpoint instead of scraping HTML,
// so the posting's metadata array survives intact for C4's metadata check.
package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobingest/internal/domain"
	"jobingest/internal/filterconfig"
	"jobingest/internal/ingest"
	"jobingest/internal/ingest/ratelimit"
	"jobingest/internal/secrets"

	"log/slog"
)

const requestTimeout = 30 * time.Second

const defaultBaseURL = "https://boards-api.greenhouse.io"

type Fetcher struct {
	hc      *http.Client
	limiter *ratelimit.HostLimiter
	cfgs    *filterconfig.Loader
	sink    ingest.PostingSink
	baseURL string
}

func New(limiter *ratelimit.HostLimiter, cfgs *filterconfig.Loader, sink ingest.PostingSink) *Fetcher {
	return &Fetcher{
		hc:      &http.Client{Timeout: requestTimeout},
		limiter: limiter,
		cfgs:    cfgs,
		sink:    sink,
		baseURL: defaultBaseURL,
	}
}

func (f *Fetcher) Kind() domain.SourceKind { return domain.SourceGreenhouse }

type ghMetadatum struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type ghJob struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	UpdatedAt string `json:"updated_at"`
	AbsoluteURL string `json:"absolute_url"`
	Content  string `json:"content"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Offices []struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	} `json:"offices"`
	Metadata []ghMetadatum `json:"metadata"`
}

type ghJobsResponse struct {
	Jobs []ghJob `json:"jobs"`
}

func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceDescriptor, log *slog.Logger) (ingest.Result, error) {
	token, _ := src.Config["boardToken"].(string)
	token = strings.TrimSpace(token)
	if token == "" {
		msg := "greenhouse source missing required config field boardToken"
		if log != nil {
			log.Error(msg, "fetcher", f.Kind(), "sourceName", src.DisplayName, "sourceId", src.ID)
		}
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	apiURL := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", f.baseURL, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return ingest.Result{ErrorMessage: err.Error(), JobsErrored: 1}, err
	}
	req.Header.Set("Accept", "application/json")
	if tok, ok := secrets.GetSourceToken(secrets.SourceTokenAccount(f.Kind(), src.ID)); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, apiURL); err != nil {
			return ingest.Result{ErrorMessage: err.Error(), JobsErrored: 1}, err
		}
	}

	res, err := f.hc.Do(req)
	if err != nil {
		msg := fmt.Sprintf("greenhouse get: %v", err)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		msg := fmt.Sprintf("greenhouse status %d", res.StatusCode)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	var body ghJobsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		msg := fmt.Sprintf("greenhouse decode: %v", err)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	postings := make([]domain.RawPosting, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		postings = append(postings, f.toRawPosting(j))
	}

	var cfg *filterconfig.FilterConfig
	if f.cfgs != nil {
		cfg = f.cfgs.Load(string(f.Kind()))
	}

	res2 := ingest.RunPostingPool(ctx, f.Kind(), src, postings, cfg, log, f.sink)
	return res2, nil
}

func (f *Fetcher) toRawPosting(j ghJob) domain.RawPosting {
	updatedAt := time.Now()
	if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil {
		updatedAt = t
	}

	secondary := make([]string, 0, len(j.Offices))
	for _, o := range j.Offices {
		loc := strings.TrimSpace(o.Location)
		if loc == "" {
			loc = strings.TrimSpace(o.Name)
		}
		if loc != "" {
			secondary = append(secondary, loc)
		}
	}

	metadata := make([]domain.MetadataItem, 0, len(j.Metadata))
	for _, m := range j.Metadata {
		metadata = append(metadata, domain.MetadataItem{Name: m.Name, Value: m.Value})
	}

	return domain.RawPosting{
		Kind:              domain.SourceGreenhouse,
		ProviderPostingID: fmt.Sprintf("%d", j.ID),
		Title:             strings.TrimSpace(j.Title),
		PrimaryLocation:   strings.TrimSpace(j.Location.Name),
		SecondaryLocations: secondary,
		BodyHTML:          j.Content,
		Metadata:          metadata,
		IsListed:          true,
		ApplicationURL:    j.AbsoluteURL,
		UpdatedAt:         updatedAt,
		PublishedAt:       updatedAt,
	}
}
