// ABOUTME: Database schema definitions
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	from_day TEXT NOT NULL,
	to_day TEXT NOT NULL,
	mode TEXT NOT NULL,
	gap_days INTEGER NOT NULL DEFAULT 0,
	distributed_days INTEGER NOT NULL DEFAULT 0,
	body TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_from_day ON reports(from_day);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

// InitSchema creates the tables if they don't exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
