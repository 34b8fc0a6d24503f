package store

import (
	"context"
	"database/sql"
	"strings"
)

// ResolveOrCreateCompany implements §4.6 step 1: case-insensitive lookup by
// name, creating the row on first sight. Provider-supplied website/logo
// backfill blank fields on an existing company but never overwrite a value
// already on file.
func ResolveOrCreateCompany(ctx context.Context, db *sql.DB, name, website, logo string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Unknown"
	}

	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM companies WHERE LOWER(name) = LOWER(?) LIMIT 1;`, name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, insertErr := db.ExecContext(ctx, `
INSERT INTO companies(name, logo, website) VALUES(?, ?, ?);`,
			name, logo, website)
		if insertErr != nil {
			return 0, insertErr
		}
		return res.LastInsertId()
	case err != nil:
		return 0, err
	}

	if website != "" || logo != "" {
		if _, err := db.ExecContext(ctx, `
UPDATE companies
SET website = CASE WHEN website = '' THEN ? ELSE website END,
    logo    = CASE WHEN logo    = '' THEN ? ELSE logo    END
WHERE id = ?;`, website, logo, id); err != nil {
			return 0, err
		}
	}

	return id, nil
}

func GetCompany(ctx context.Context, db *sql.DB, id int64) (name, logo, website string, err error) {
	err = db.QueryRowContext(ctx, `SELECT name, logo, website FROM companies WHERE id = ?;`, id).Scan(&name, &logo, &website)
	return
}
