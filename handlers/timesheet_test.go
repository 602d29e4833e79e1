// ABOUTME: Tests for timesheet MCP tool handlers
// ABOUTME: Validates input checking and report history tools
package handlers

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/harperreed/punchcard/db"
	"github.com/harperreed/punchcard/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	return database
}

func TestGenerateTimesheetRejectsBadDayKey(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	handler := NewTimesheetHandlers(database)

	_, _, err := handler.GenerateTimesheet(context.Background(), nil, GenerateTimesheetInput{
		From: "01/06/2025",
		To:   "2025-01-10",
	})
	if err == nil {
		t.Error("Expected error for malformed from day")
	}

	_, _, err = handler.GenerateTimesheet(context.Background(), nil, GenerateTimesheetInput{
		From: "2025-01-06",
		To:   "2025-1-10",
	})
	if err == nil {
		t.Error("Expected error for malformed to day")
	}
}

func TestGenerateTimesheetRejectsBadMode(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	handler := NewTimesheetHandlers(database)

	_, _, err := handler.GenerateTimesheet(context.Background(), nil, GenerateTimesheetInput{
		From: "2025-01-06",
		To:   "2025-01-10",
		Mode: "even",
	})
	if err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestGetDayActivityRejectsBadDayKey(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	handler := NewTimesheetHandlers(database)

	_, _, err := handler.GetDayActivity(context.Background(), nil, GetDayActivityInput{Day: "yesterday"})
	if err == nil {
		t.Error("Expected error for malformed day")
	}
}

func TestListReportsHandler(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	for i := 0; i < 3; i++ {
		rep := &models.Report{RunID: "run", FromDay: "2025-01-06", ToDay: "2025-01-10", Mode: "proportional", Body: "body"}
		if err := db.SaveReport(database, rep); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	handler := NewTimesheetHandlers(database)

	_, output, err := handler.ListReports(context.Background(), nil, ListReportsInput{})
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if output.Count != 3 {
		t.Errorf("Expected 3 reports, got %d", output.Count)
	}
}

func TestGetReportHandler(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	rep := &models.Report{RunID: "run", FromDay: "2025-01-06", ToDay: "2025-01-10", Mode: "phased", Body: "the body"}
	if err := db.SaveReport(database, rep); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	handler := NewTimesheetHandlers(database)

	_, output, err := handler.GetReport(context.Background(), nil, GetReportInput{ReportID: rep.ID.String()})
	if err != nil {
		t.Fatalf("GetReport failed: %v", err)
	}
	if output.Report.Body != "the body" {
		t.Errorf("Wrong body: %q", output.Report.Body)
	}

	_, _, err = handler.GetReport(context.Background(), nil, GetReportInput{ReportID: "not-a-uuid"})
	if err == nil {
		t.Error("Expected error for invalid report_id")
	}
}
