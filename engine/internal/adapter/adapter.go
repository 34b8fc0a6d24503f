// Package adapter implements C6: normalizing a provider-shaped RawPosting
// into the canonical schema and persisting it. Grounded on the teacher's
// internal/scrape/process.go (ProcessLeads/jobRowFromLead), generalized
// from a single-provider lead shape to the three-provider RawPosting.
package adapter

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"jobingest/internal/config"
	"jobingest/internal/domain"
	"jobingest/internal/store"
	"jobingest/internal/textutil"
)

// Adapter implements ingest.PostingSink: it owns the DB handle and the
// scoring rules used to tag skills/jobType/experienceLevel.
type Adapter struct {
	db  *sql.DB
	cfg config.Config
	log *slog.Logger
}

func New(db *sql.DB, cfg config.Config, log *slog.Logger) *Adapter {
	return &Adapter{db: db, cfg: cfg, log: log}
}

// Process maps one relevant RawPosting into a CanonicalPosting and upserts
// it, per §4.6. err is non-nil only for a genuine storage failure; a
// posting whose sections, tags or salary do not parse is still written
// with those fields empty. NeedsReview carries the relevance engine's
// NEEDS_REVIEW decision.
func (a *Adapter) Process(ctx context.Context, kind domain.SourceKind, src domain.SourceDescriptor, raw domain.RawPosting) (bool, error) {
	companyID, companyName, err := a.resolveCompany(ctx, src)
	if err != nil {
		return false, err
	}

	canonical := a.buildCanonical(kind, companyID, companyName, raw)

	saved, err := store.UpsertPosting(ctx, a.db, canonical)
	if err != nil {
		return false, err
	}
	return saved, nil
}

// resolveCompany implements §4.6 step 1: a fixed source.CompanyID wins;
// otherwise resolve-or-create by the source's display name.
func (a *Adapter) resolveCompany(ctx context.Context, src domain.SourceDescriptor) (id int64, name string, err error) {
	if src.CompanyID != nil {
		companyName, _, _, gerr := store.GetCompany(ctx, a.db, *src.CompanyID)
		if gerr != nil {
			return 0, "", gerr
		}
		return *src.CompanyID, companyName, nil
	}

	id, err = store.ResolveOrCreateCompany(ctx, a.db, src.DisplayName, "", "")
	if err != nil {
		return 0, "", err
	}
	return id, src.DisplayName, nil
}

func (a *Adapter) buildCanonical(kind domain.SourceKind, companyID int64, companyName string, raw domain.RawPosting) domain.CanonicalPosting {
	requirements, responsibilities, benefits := ExtractSections(raw.BodyHTML)

	plainText := raw.BodyText
	if plainText == "" {
		plainText = textutil.StripHTML(raw.BodyHTML)
	}
	haystack := raw.Title + "\n" + plainText

	salaryMin, salaryMax, currency, cycle := ParseSalary(raw.CompensationText)

	region := raw.DeterminedRegion
	if region == "" {
		region = domain.RegionGlobal
	}

	title := strings.TrimSpace(raw.Title)
	fingerprint := textutil.NormalizeForDeduplication(title + " " + companyName)

	return domain.CanonicalPosting{
		SourceKind:        kind,
		ProviderPostingID: raw.ProviderPostingID,
		CompanyID:         companyID,

		Title:            title,
		DescriptionHTML:  raw.BodyHTML,
		Requirements:     requirements,
		Responsibilities: responsibilities,
		Benefits:         benefits,

		Location:      locationOf(raw),
		Country:       raw.AddressCountry,
		WorkplaceType: workplaceTypeOf(raw),
		HiringRegion:  region,

		JobType:         FirstMatchingTag(haystack, a.cfg.Scoring.JobTypeRules),
		ExperienceLevel: FirstMatchingTag(haystack, a.cfg.Scoring.ExperienceRules),
		Skills:          MatchTags(haystack, a.cfg.Scoring.SkillRules),
		Tags:            metadataTags(raw.Metadata),

		SalaryMin:   salaryMin,
		SalaryMax:   salaryMax,
		Currency:    currency,
		SalaryCycle: cycle,

		ApplicationURL:   raw.ApplicationURL,
		ApplicationEmail: raw.ApplicationEmail,

		PublishedAt: raw.PublishedAt,
		UpdatedAt:   raw.UpdatedAt,

		Status: domain.StatusActive,

		NormalizedFingerprint: fingerprint,
		NeedsReview:           raw.DeterminedReview,
	}
}

func locationOf(raw domain.RawPosting) string {
	if raw.PrimaryLocation != "" {
		return raw.PrimaryLocation
	}
	if len(raw.SecondaryLocations) > 0 {
		return raw.SecondaryLocations[0]
	}
	return strings.TrimSpace(strings.Join([]string{raw.AddressLocality, raw.AddressRegion, raw.AddressCountry}, ", "))
}

// workplaceTypeOf trusts the provider's own hint (Lever's workplaceType
// field, or Ashby's IsRemote bool) over inferring it from free text.
func workplaceTypeOf(raw domain.RawPosting) domain.WorkplaceType {
	if raw.WorkplaceType != "" {
		return raw.WorkplaceType
	}
	if raw.IsRemote != nil && *raw.IsRemote {
		return domain.WorkplaceRemote
	}
	return ""
}

func metadataTags(items []domain.MetadataItem) []string {
	var tags []string
	for _, m := range items {
		switch v := m.Value.(type) {
		case string:
			if v != "" {
				tags = append(tags, m.Name+":"+v)
			}
		case bool:
			if v {
				tags = append(tags, m.Name)
			}
		case []string:
			for _, s := range v {
				tags = append(tags, m.Name+":"+s)
			}
		case []any:
			for _, s := range v {
				if str, ok := s.(string); ok {
					tags = append(tags, m.Name+":"+str)
				}
			}
		}
	}
	return tags
}
