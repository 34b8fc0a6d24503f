// Package ashby fetches a board's postings from the Ashby posting-api job
// board endpoint. Grounded on the teacher's Lever JSON-decode shape
// (encoding/json.Decoder into a typed struct) generalized to Ashby's
// secondary-locations array and structured address fields.
package ashby

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

const defaultBaseURL = "https://api.ashbyhq.com"

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

func (f *Fetcher) Kind() domain.SourceKind { return domain.SourceAshby }

type ashbyAddress struct {
	PostalAddress struct {
		AddressLocality string `json:"addressLocality"`
		AddressRegion   string `json:"addressRegion"`
		AddressCountry  string `json:"addressCountry"`
	} `json:"postalAddress"`
}

type ashbyPosting struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Location           string       `json:"location"`
	SecondaryLocations  []struct {
		Location string `json:"location"`
	} `json:"secondaryLocations"`
	Address            ashbyAddress `json:"address"`
	DescriptionHTML    string       `json:"descriptionHtml"`
	IsListed           bool         `json:"isListed"`
	IsRemote           *bool        `json:"isRemote"`
	PublishedAt        string       `json:"publishedAt"`
	UpdatedAt          string       `json:"updatedAt"`
	ApplyURL           string       `json:"applyUrl"`
	CompensationTierSummary string  `json:"compensationTierSummary"`
}

type ashbyResponse struct {
	Jobs []ashbyPosting `json:"jobs"`
}

func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceDescriptor, log *slog.Logger) (ingest.Result, error) {
	board, _ := src.Config["jobBoardName"].(string)
	board = strings.TrimSpace(board)
	if board == "" {
		msg := "ashby source missing required config field jobBoardName"
		if log != nil {
			log.Error(msg, "fetcher", f.Kind(), "sourceName", src.DisplayName, "sourceId", src.ID)
		}
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	apiURL := fmt.Sprintf("%s/posting-api/job-board/%s", f.baseURL, board)

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
		msg := fmt.Sprintf("ashby get: %v", err)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		msg := fmt.Sprintf("ashby status %d", res.StatusCode)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	var body ashbyResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		msg := fmt.Sprintf("ashby decode: %v", err)
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

func (f *Fetcher) toRawPosting(j ashbyPosting) domain.RawPosting {
	published, _ := time.Parse(time.RFC3339, j.PublishedAt)
	updated, err := time.Parse(time.RFC3339, j.UpdatedAt)
	if err != nil {
		updated = published
	}
	if updated.IsZero() {
		updated = time.Now()
	}

	secondary := make([]string, 0, len(j.SecondaryLocations))
	for _, l := range j.SecondaryLocations {
		if loc := strings.TrimSpace(l.Location); loc != "" {
			secondary = append(secondary, loc)
		}
	}

	return domain.RawPosting{
		Kind:               domain.SourceAshby,
		ProviderPostingID:  j.ID,
		Title:              strings.TrimSpace(j.Title),
		PrimaryLocation:    strings.TrimSpace(j.Location),
		SecondaryLocations: secondary,
		AddressLocality:    j.Address.PostalAddress.AddressLocality,
		AddressRegion:      j.Address.PostalAddress.AddressRegion,
		AddressCountry:     j.Address.PostalAddress.AddressCountry,
		BodyHTML:           j.DescriptionHTML,
		IsListed:           j.IsListed,
		IsRemote:           j.IsRemote,
		PublishedAt:        published,
		UpdatedAt:          updated,
		ApplicationURL:     j.ApplyURL,
		CompensationText:   j.CompensationTierSummary,
	}
}
