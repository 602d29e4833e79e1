// ABOUTME: Tests for report history database operations
// ABOUTME: Covers saving, fetching, and listing generated timesheets
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/punchcard/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	return db
}

func TestOpenDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	// Verify database file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}

	// Verify WAL mode
	var mode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL mode, got %s", mode)
	}
}

func TestSaveReport(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	report := &models.Report{
		RunID:           "01JGXH4S3V9QWERTYUIOPASDF1",
		FromDay:         "2025-01-06",
		ToDay:           "2025-01-10",
		Mode:            "proportional",
		GapDays:         2,
		DistributedDays: 2,
		Body:            "Timesheet 2025-01-06 to 2025-01-10\n",
	}

	if err := SaveReport(db, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	if report.ID == uuid.Nil {
		t.Error("Report ID was not set")
	}
	if report.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}
}

func TestGetReport(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	report := &models.Report{
		RunID:   "01JGXH4S3V9QWERTYUIOPASDF2",
		FromDay: "2025-02-03",
		ToDay:   "2025-02-07",
		Mode:    "phased",
		Body:    "report body",
	}

	if err := SaveReport(db, report); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	found, err := GetReport(db, report.ID)
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if found == nil {
		t.Fatal("GetReport returned nil for saved report")
	}

	if found.FromDay != "2025-02-03" || found.ToDay != "2025-02-07" {
		t.Errorf("Wrong range: %s to %s", found.FromDay, found.ToDay)
	}
	if found.Mode != "phased" {
		t.Errorf("Expected mode phased, got %s", found.Mode)
	}
	if found.Body != "report body" {
		t.Errorf("Body not round-tripped: %q", found.Body)
	}
}

func TestGetReportNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	found, err := GetReport(db, uuid.New())
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if found != nil {
		t.Error("Expected nil for missing report")
	}
}

func TestListReports(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 5; i++ {
		report := &models.Report{
			RunID:   fmt.Sprintf("run-%d", i),
			FromDay: "2025-03-03",
			ToDay:   "2025-03-07",
			Mode:    "proportional",
			Body:    "body",
		}
		if err := SaveReport(db, report); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	reports, err := ListReports(db, 3)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(reports))
	}

	// Listing excludes the body column
	if reports[0].Body != "" {
		t.Error("Expected empty body in listing")
	}

	// Default limit kicks in for zero
	reports, err = ListReports(db, 0)
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(reports) != 5 {
		t.Errorf("Expected 5 reports, got %d", len(reports))
	}
}
