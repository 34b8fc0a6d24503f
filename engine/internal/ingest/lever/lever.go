// Package lever fetches a single company's postings from the Lever
// postings API. Adapted from the teacher's internal/scrape/lever/lever.go:
// same per-company worker-pool fan-out (workCh/jobsCh, bounded workers),
// rewritten to return domain.RawPosting instead of domain.JobLead and to
// stop HTML-hydrating postings, since the JSON payload already carries
// categories.allLocations, workplaceType, and description in full.
package lever

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
	"jobingest/internal/textutil"

	"log/slog"
)

const requestTimeout = 30 * time.Second

const defaultBaseURL = "https://api.lever.co"

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

func (f *Fetcher) Kind() domain.SourceKind { return domain.SourceLever }

type leverCategories struct {
	Location     string   `json:"location"`
	AllLocations []string `json:"allLocations"`
	Team         string   `json:"team"`
	Commitment   string   `json:"commitment"`
}

type leverPosting struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"` // title
	HostedURL     string          `json:"hostedUrl"`
	CreatedAt     int64           `json:"createdAt"` // ms epoch
	Categories    leverCategories `json:"categories"`
	Description   string          `json:"description"` // html
	DescriptionPlain string       `json:"descriptionPlain"`
	Lists         []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
	} `json:"lists"`
	WorkplaceType string `json:"workplaceType"` // "remote", "hybrid", "onsite"
}

func (f *Fetcher) Fetch(ctx context.Context, src domain.SourceDescriptor, log *slog.Logger) (ingest.Result, error) {
	slug, _ := src.Config["companyIdentifier"].(string)
	slug = strings.TrimSpace(slug)
	if slug == "" {
		msg := "lever source missing required config field companyIdentifier"
		if log != nil {
			log.Error(msg, "fetcher", f.Kind(), "sourceName", src.DisplayName, "sourceId", src.ID)
		}
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	apiURL := fmt.Sprintf("%s/v0/postings/%s?mode=json", f.baseURL, slug)

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
		msg := fmt.Sprintf("lever get: %v", err)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		msg := fmt.Sprintf("lever status %d", res.StatusCode)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	var raw []leverPosting
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		msg := fmt.Sprintf("lever decode: %v", err)
		return ingest.Result{ErrorMessage: msg, JobsErrored: 1}, fmt.Errorf("%s", msg)
	}

	postings := make([]domain.RawPosting, 0, len(raw))
	for _, p := range raw {
		postings = append(postings, f.toRawPosting(p))
	}

	var cfg *filterconfig.FilterConfig
	if f.cfgs != nil {
		cfg = f.cfgs.Load(string(f.Kind()))
	}

	res2 := ingest.RunPostingPool(ctx, f.Kind(), src, postings, cfg, log, f.sink)
	return res2, nil
}

func (f *Fetcher) toRawPosting(p leverPosting) domain.RawPosting {
	created := time.Now()
	if p.CreatedAt > 0 {
		created = time.UnixMilli(p.CreatedAt)
	}

	var body strings.Builder
	body.WriteString(p.Description)

	var bodyText strings.Builder
	bodyText.WriteString(p.DescriptionPlain)

	for _, l := range p.Lists {
		body.WriteString("\n<h3>")
		body.WriteString(l.Text)
		body.WriteString("</h3>\n")
		body.WriteString(l.Content)

		bodyText.WriteString("\n")
		bodyText.WriteString(l.Text)
		bodyText.WriteString("\n")
		bodyText.WriteString(textutil.StripHTML(l.Content))
	}

	return domain.RawPosting{
		Kind:               domain.SourceLever,
		ProviderPostingID:  p.ID,
		Title:              strings.TrimSpace(p.Text),
		PrimaryLocation:    strings.TrimSpace(p.Categories.Location),
		SecondaryLocations: p.Categories.AllLocations,
		BodyHTML:           body.String(),
		BodyText:           strings.TrimSpace(bodyText.String()),
		WorkplaceType:      workplaceTypeOf(p.WorkplaceType),
		IsListed:           true,
		PublishedAt:        created,
		UpdatedAt:          created,
		ApplicationURL:     p.HostedURL,
	}
}

func workplaceTypeOf(s string) domain.WorkplaceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remote":
		return domain.WorkplaceRemote
	case "hybrid":
		return domain.WorkplaceHybrid
	case "on-site", "onsite":
		return domain.WorkplaceOnsite
	default:
		return ""
	}
}
