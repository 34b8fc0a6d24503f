package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"jobingest/internal/domain"
)

// ListEnabledSources loads every job_sources row with enabled=1 for the
// orchestrator (§4.8). SourceDescriptor is operator-owned; the core only
// reads it here.
func ListEnabledSources(ctx context.Context, db *sql.DB) ([]domain.SourceDescriptor, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, kind, display_name, company_id, config_json, enabled
FROM job_sources
WHERE enabled = 1
ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SourceDescriptor
	for rows.Next() {
		var (
			src        domain.SourceDescriptor
			kind       string
			companyID  sql.NullInt64
			configJSON string
			enabled    int
		)
		if err := rows.Scan(&src.ID, &kind, &src.DisplayName, &companyID, &configJSON, &enabled); err != nil {
			return nil, err
		}
		src.Kind = domain.SourceKind(kind)
		src.Enabled = enabled != 0
		if companyID.Valid {
			id := companyID.Int64
			src.CompanyID = &id
		}
		cfg := make(map[string]any)
		if configJSON != "" {
			_ = json.Unmarshal([]byte(configJSON), &cfg)
		}
		src.Config = cfg
		out = append(out, src)
	}
	return out, rows.Err()
}

// InsertSource is a convenience used by tests and bootstrap seeding; the
// orchestrator itself only reads sources.
func InsertSource(ctx context.Context, db *sql.DB, src domain.SourceDescriptor) (int64, error) {
	cfgJSON, err := json.Marshal(src.Config)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, `
INSERT INTO job_sources(kind, display_name, company_id, config_json, enabled)
VALUES(?, ?, ?, ?, ?);`,
		string(src.Kind), src.DisplayName, src.CompanyID, string(cfgJSON), boolToInt(src.Enabled))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SeedSourcesIfEmpty loads the operator's config/sources.yml into
// job_sources the first time the table is empty, so a fresh database
// doesn't require a separate migration step before the first run.
func SeedSourcesIfEmpty(ctx context.Context, db *sql.DB, sources []domain.SourceDescriptor) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_sources;`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, src := range sources {
		if _, err := InsertSource(ctx, db, src); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
