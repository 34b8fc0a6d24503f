package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"jobingest/internal/domain"
)

// UpsertPosting implements §4.6 step 5 / §4.10's state machine:
//   - if an ACTIVE row with the same fingerprint already exists under a
//     different (sourceKind, providerPostingId), skip as a duplicate;
//   - otherwise insert new, or update the existing (sourceKind,
//     providerPostingId) row, resurrecting it to ACTIVE if it was CLOSED.
func UpsertPosting(ctx context.Context, db *sql.DB, p domain.CanonicalPosting) (saved bool, err error) {
	skills, err := json.Marshal(p.Skills)
	if err != nil {
		return false, err
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return false, err
	}

	var existingID int64
	err = db.QueryRowContext(ctx, `
SELECT id FROM postings WHERE source_kind = ? AND provider_posting_id = ? LIMIT 1;`,
		string(p.SourceKind), p.ProviderPostingID).Scan(&existingID)

	switch {
	case err == sql.ErrNoRows:
		if p.NormalizedFingerprint != "" {
			var dupID int64
			dupErr := db.QueryRowContext(ctx, `
SELECT id FROM postings
WHERE normalized_fingerprint = ?
  AND status = 'ACTIVE'
  AND NOT (source_kind = ? AND provider_posting_id = ?)
LIMIT 1;`, p.NormalizedFingerprint, string(p.SourceKind), p.ProviderPostingID).Scan(&dupID)
			if dupErr == nil {
				return false, nil
			}
			if dupErr != sql.ErrNoRows {
				return false, dupErr
			}
		}

		if _, insErr := db.ExecContext(ctx, insertPostingSQL,
			string(p.SourceKind), p.ProviderPostingID, p.CompanyID, p.Title,
			p.DescriptionHTML, p.Requirements, p.Responsibilities, p.Benefits,
			p.Location, p.Country, string(p.WorkplaceType), string(p.HiringRegion),
			p.JobType, p.ExperienceLevel, string(skills), string(tags),
			nullableFloat(p.SalaryMin), nullableFloat(p.SalaryMax), p.Currency, p.SalaryCycle,
			p.ApplicationURL, p.ApplicationEmail,
			formatTimeOrEmpty(p.PublishedAt), formatTimeOrEmpty(p.UpdatedAt),
			string(domain.StatusActive), p.NormalizedFingerprint, boolToInt(p.NeedsReview),
		); insErr != nil {
			return false, fmt.Errorf("insert posting: %w", insErr)
		}
		return true, nil

	case err != nil:
		return false, err
	}

	if _, updErr := db.ExecContext(ctx, updatePostingSQL,
		p.CompanyID, p.Title, p.DescriptionHTML, p.Requirements, p.Responsibilities, p.Benefits,
		p.Location, p.Country, string(p.WorkplaceType), string(p.HiringRegion),
		p.JobType, p.ExperienceLevel, string(skills), string(tags),
		nullableFloat(p.SalaryMin), nullableFloat(p.SalaryMax), p.Currency, p.SalaryCycle,
		p.ApplicationURL, p.ApplicationEmail,
		formatTimeOrEmpty(p.PublishedAt), formatTimeOrEmpty(p.UpdatedAt),
		string(domain.StatusActive), p.NormalizedFingerprint, boolToInt(p.NeedsReview),
		existingID,
	); updErr != nil {
		return false, fmt.Errorf("update posting: %w", updErr)
	}
	return true, nil
}

const insertPostingSQL = `
INSERT INTO postings(
  source_kind, provider_posting_id, company_id, title,
  description_html, requirements, responsibilities, benefits,
  location, country, workplace_type, hiring_region,
  job_type, experience_level, skills_json, tags_json,
  salary_min, salary_max, currency, salary_cycle,
  application_url, application_email,
  published_at, updated_at,
  status, normalized_fingerprint, needs_review
) VALUES (?,?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?,?, ?,?,?,?, ?,?, ?,?, ?,?,?);`

const updatePostingSQL = `
UPDATE postings SET
  company_id = ?, title = ?, description_html = ?, requirements = ?, responsibilities = ?, benefits = ?,
  location = ?, country = ?, workplace_type = ?, hiring_region = ?,
  job_type = ?, experience_level = ?, skills_json = ?, tags_json = ?,
  salary_min = ?, salary_max = ?, currency = ?, salary_cycle = ?,
  application_url = ?, application_email = ?,
  published_at = ?, updated_at = ?,
  status = ?, normalized_fingerprint = ?, needs_review = ?,
  closed_at = ''
WHERE id = ?;`

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func formatTimeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
