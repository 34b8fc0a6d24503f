// Package filterconfig loads and caches the per-provider JSON keyword
// configuration the relevance engine consumes (§3, §4.3).
package filterconfig

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"jobingest/internal/textutil"
)

// LocationKeywords is the §3 LOCATION_KEYWORDS section.
type LocationKeywords struct {
	StrongPositiveGlobal      []string `json:"STRONG_POSITIVE_GLOBAL"`
	StrongPositiveLatam       []string `json:"STRONG_POSITIVE_LATAM"`
	StrongNegativeRestriction []string `json:"STRONG_NEGATIVE_RESTRICTION"`
	Ambiguous                 []string `json:"AMBIGUOUS"`
	AcceptExactLatamCountries []string `json:"ACCEPT_EXACT_LATAM_COUNTRIES"`
	AcceptExactBrazilTerms    []string `json:"ACCEPT_EXACT_BRAZIL_TERMS"`
}

// ContentKeywords is the §3 CONTENT_KEYWORDS section.
type ContentKeywords struct {
	StrongPositiveGlobal   []string `json:"STRONG_POSITIVE_GLOBAL"`
	StrongPositiveLatam    []string `json:"STRONG_POSITIVE_LATAM"`
	StrongNegativeRegion   []string `json:"STRONG_NEGATIVE_REGION"`
	StrongNegativeTimezone []string `json:"STRONG_NEGATIVE_TIMEZONE"`
	AcceptExactBrazilTerms []string `json:"ACCEPT_EXACT_BRAZIL_TERMS"`
}

// MetadataFieldRule is one entry of §3 REMOTE_METADATA_FIELDS.
type MetadataFieldRule struct {
	Type            string   `json:"type"` // "boolean" | "string"
	PositiveValue   string   `json:"positiveValue"`
	NegativeValue   string   `json:"negativeValue"`
	PositiveValues  []string `json:"positiveValues"`
	AllowedValues   []string `json:"allowedValues"`
	DisallowedValues []string `json:"disallowedValues"`
}

// FilterConfig is the parsed per-provider JSON document (§3).
type FilterConfig struct {
	LocationKeywords          LocationKeywords             `json:"LOCATION_KEYWORDS"`
	ContentKeywords           ContentKeywords              `json:"CONTENT_KEYWORDS"`
	RemoteMetadataFields      map[string]MetadataFieldRule `json:"REMOTE_METADATA_FIELDS"`
	ProcessJobsUpdatedAfterDate string                     `json:"PROCESS_JOBS_UPDATED_AFTER_DATE"`
}

// UpdatedAfterThreshold parses ProcessJobsUpdatedAfterDate, if set.
func (c *FilterConfig) UpdatedAfterThreshold() (time.Time, bool) {
	if c == nil || c.ProcessJobsUpdatedAfterDate == "" {
		return time.Time{}, false
	}
	return textutil.ParseDate(c.ProcessJobsUpdatedAfterDate)
}

// Loader reads config/<provider>-filter-config.json files, caching each
// provider's parsed document (or its absence) after first use. A nil
// cached entry means "skip that class of check" downstream, per §4.3's
// never-throws-to-callers contract.
type Loader struct {
	dir string
	log *slog.Logger

	mu    sync.RWMutex
	cache map[string]*FilterConfig
}

// NewLoader builds a Loader rooted at dir (typically "config").
func NewLoader(dir string, log *slog.Logger) *Loader {
	return &Loader{dir: dir, log: log, cache: make(map[string]*FilterConfig)}
}

// Load returns the cached FilterConfig for provider, loading it from disk
// on first use. A nil return means no config is available; it is never an
// error condition the caller must branch on separately.
func (l *Loader) Load(provider string) *FilterConfig {
	l.mu.RLock()
	if cfg, ok := l.cache[provider]; ok {
		l.mu.RUnlock()
		return cfg
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under the write lock: another goroutine may have raced us.
	if cfg, ok := l.cache[provider]; ok {
		return cfg
	}

	cfg := l.loadFromDisk(provider)
	l.cache[provider] = cfg
	return cfg
}

func (l *Loader) loadFromDisk(provider string) *FilterConfig {
	path := filepath.Join(l.dir, fmt.Sprintf("%s-filter-config.json", provider))

	b, err := os.ReadFile(path)
	if err != nil {
		if l.log != nil {
			l.log.Warn("filter config unavailable, falling back to provider remote hint only",
				"provider", provider, "path", path, "error", err)
		}
		return nil
	}

	var cfg FilterConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		if l.log != nil {
			l.log.Error("filter config malformed, caching absent",
				"provider", provider, "path", path, "error", err)
		}
		return nil
	}

	// relevance.metadataCheck looks fields up by strings.ToLower(item.Name);
	// normalize the JSON's keys the same way so "Remote?" in the document
	// matches a metadata field literally named "Remote?" on the posting.
	if len(cfg.RemoteMetadataFields) > 0 {
		normalized := make(map[string]MetadataFieldRule, len(cfg.RemoteMetadataFields))
		for name, rule := range cfg.RemoteMetadataFields {
			normalized[strings.ToLower(name)] = rule
		}
		cfg.RemoteMetadataFields = normalized
	}

	return &cfg
}
