// ABOUTME: Report history database operations
// ABOUTME: Handles saving, listing, and fetching generated timesheets
package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/punchcard/models"
)

func SaveReport(db *sql.DB, report *models.Report) error {
	report.ID = uuid.New()
	report.CreatedAt = time.Now()

	_, err := db.Exec(`
		INSERT INTO reports (id, run_id, from_day, to_day, mode, gap_days, distributed_days, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID.String(), report.RunID, report.FromDay, report.ToDay, report.Mode,
		report.GapDays, report.DistributedDays, report.Body, report.CreatedAt)

	return err
}

func GetReport(db *sql.DB, id uuid.UUID) (*models.Report, error) {
	report := &models.Report{}

	err := db.QueryRow(`
		SELECT id, run_id, from_day, to_day, mode, gap_days, distributed_days, body, created_at
		FROM reports WHERE id = ?
	`, id.String()).Scan(
		&report.ID,
		&report.RunID,
		&report.FromDay,
		&report.ToDay,
		&report.Mode,
		&report.GapDays,
		&report.DistributedDays,
		&report.Body,
		&report.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return report, nil
}

// ListReports returns the most recent reports, newest first. The body column
// is excluded to keep listings cheap.
func ListReports(db *sql.DB, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.Query(`
		SELECT id, run_id, from_day, to_day, mode, gap_days, distributed_days, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var report models.Report
		err := rows.Scan(
			&report.ID,
			&report.RunID,
			&report.FromDay,
			&report.ToDay,
			&report.Mode,
			&report.GapDays,
			&report.DistributedDays,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
