package store

import (
	"database/sql"
)

// Migrate creates the schema if absent and adds columns that later
// revisions introduced, the same plain-SQL / pragma_table_info probe the
// teacher uses instead of a migration framework (internal/store/table.go).
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS job_sources (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  kind TEXT NOT NULL,
  display_name TEXT NOT NULL,
  company_id INTEGER,
  config_json TEXT NOT NULL DEFAULT '{}',
  enabled INTEGER NOT NULL DEFAULT 1
);`,
		`CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  logo TEXT NOT NULL DEFAULT '',
  website TEXT NOT NULL DEFAULT ''
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_name_ci ON companies(LOWER(name));`,
		`CREATE TABLE IF NOT EXISTS postings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source_kind TEXT NOT NULL,
  provider_posting_id TEXT NOT NULL,
  company_id INTEGER NOT NULL,
  title TEXT NOT NULL DEFAULT '',
  description_html TEXT NOT NULL DEFAULT '',
  requirements TEXT NOT NULL DEFAULT '',
  responsibilities TEXT NOT NULL DEFAULT '',
  benefits TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  workplace_type TEXT NOT NULL DEFAULT '',
  hiring_region TEXT NOT NULL DEFAULT '',
  job_type TEXT NOT NULL DEFAULT '',
  experience_level TEXT NOT NULL DEFAULT '',
  skills_json TEXT NOT NULL DEFAULT '[]',
  tags_json TEXT NOT NULL DEFAULT '[]',
  salary_min REAL,
  salary_max REAL,
  currency TEXT NOT NULL DEFAULT '',
  salary_cycle TEXT NOT NULL DEFAULT '',
  application_url TEXT NOT NULL DEFAULT '',
  application_email TEXT NOT NULL DEFAULT '',
  published_at TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'ACTIVE',
  normalized_fingerprint TEXT NOT NULL DEFAULT '',
  needs_review INTEGER NOT NULL DEFAULT 0,
  closed_at TEXT NOT NULL DEFAULT ''
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_postings_source_provider ON postings(source_kind, provider_posting_id);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_fingerprint ON postings(normalized_fingerprint);`,
		`CREATE INDEX IF NOT EXISTS idx_postings_status_kind ON postings(source_kind, status);`,
		`CREATE TABLE IF NOT EXISTS source_run_stats (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_source_id INTEGER NOT NULL,
  run_started_at TEXT NOT NULL,
  run_ended_at TEXT NOT NULL,
  status TEXT NOT NULL,
  jobs_found INTEGER NOT NULL DEFAULT 0,
  jobs_relevant INTEGER NOT NULL DEFAULT 0,
  jobs_processed INTEGER NOT NULL DEFAULT 0,
  jobs_errored INTEGER NOT NULL DEFAULT 0,
  error_message TEXT NOT NULL DEFAULT '',
  duration_ms INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE INDEX IF NOT EXISTS idx_source_run_stats_source ON source_run_stats(job_source_id);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return addColumnIfMissing(db, "postings", "needs_review", `ALTER TABLE postings ADD COLUMN needs_review INTEGER NOT NULL DEFAULT 0;`)
}

// addColumnIfMissing mirrors the teacher's pragma_table_info probe
// (internal/store/table.go) rather than reaching for a migration library.
func addColumnIfMissing(db *sql.DB, table, column, alterStmt string) error {
	var one int
	err := db.QueryRow(`
SELECT 1
FROM pragma_table_info(?)
WHERE name = ?
LIMIT 1;
`, table, column).Scan(&one)

	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	_, err = db.Exec(alterStmt)
	return err
}
