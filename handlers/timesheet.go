// ABOUTME: Timesheet MCP tool handlers
// ABOUTME: Implements generate_timesheet, get_day_activity, and report history tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/punchcard/aggregate"
	"github.com/harperreed/punchcard/config"
	"github.com/harperreed/punchcard/db"
	"github.com/harperreed/punchcard/distribute"
	"github.com/harperreed/punchcard/models"
	"github.com/harperreed/punchcard/report"
)

type TimesheetHandlers struct {
	db *sql.DB
}

func NewTimesheetHandlers(database *sql.DB) *TimesheetHandlers {
	return &TimesheetHandlers{db: database}
}

// buildOrchestrator wires the configured provider set. Configuration comes
// from the environment on every call so a restarted MCP client picks up
// changes without restarting the server.
func buildOrchestrator(ctx context.Context, noCache bool) (*aggregate.Orchestrator, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := report.OpenCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	activity, primary, secondary, err := report.BuildProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return aggregate.New(store, activity, primary, secondary), nil
}

type GenerateTimesheetInput struct {
	From    string `json:"from" jsonschema:"Start day in YYYY-MM-DD form"`
	To      string `json:"to" jsonschema:"End day in YYYY-MM-DD form, inclusive"`
	Mode    string `json:"mode,omitempty" jsonschema:"Gap distribution mode: proportional or phased (default proportional)"`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"Bypass cached provider results and refetch"`
}

type GenerateTimesheetOutput struct {
	ReportID        string `json:"report_id"`
	Body            string `json:"body"`
	GapDays         int    `json:"gap_days"`
	DistributedDays int    `json:"distributed_days"`
	Message         string `json:"message,omitempty"`
}

func (h *TimesheetHandlers) GenerateTimesheet(ctx context.Context, req *mcp.CallToolRequest, input GenerateTimesheetInput) (*mcp.CallToolResult, GenerateTimesheetOutput, error) {
	if err := models.ValidateDayKey(input.From); err != nil {
		return nil, GenerateTimesheetOutput{}, err
	}
	if err := models.ValidateDayKey(input.To); err != nil {
		return nil, GenerateTimesheetOutput{}, err
	}
	mode := distribute.ModeProportional
	if input.Mode != "" {
		var err error
		mode, err = distribute.ParseMode(input.Mode)
		if err != nil {
			return nil, GenerateTimesheetOutput{}, err
		}
	}

	orc, err := buildOrchestrator(ctx, input.NoCache)
	if err != nil {
		return nil, GenerateTimesheetOutput{}, err
	}

	res, err := report.Generate(ctx, h.db, orc, report.Options{
		From: input.From,
		To:   input.To,
		Mode: mode,
	})
	if err != nil {
		return nil, GenerateTimesheetOutput{}, err
	}

	return &mcp.CallToolResult{}, GenerateTimesheetOutput{
		ReportID:        res.Report.ID.String(),
		Body:            res.Report.Body,
		GapDays:         res.Summary.GapDays,
		DistributedDays: res.Summary.DistributedDays,
		Message:         res.Summary.Message,
	}, nil
}

type GetDayActivityInput struct {
	Day     string `json:"day" jsonschema:"Day to fetch in YYYY-MM-DD form"`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"Bypass cached provider results and refetch"`
}

type GetDayActivityOutput struct {
	Day         models.DayActivity `json:"day"`
	HasActivity bool               `json:"has_activity"`
}

// GetDayActivity fetches a single day without gap distribution.
func (h *TimesheetHandlers) GetDayActivity(ctx context.Context, req *mcp.CallToolRequest, input GetDayActivityInput) (*mcp.CallToolResult, GetDayActivityOutput, error) {
	if err := models.ValidateDayKey(input.Day); err != nil {
		return nil, GetDayActivityOutput{}, err
	}

	orc, err := buildOrchestrator(ctx, input.NoCache)
	if err != nil {
		return nil, GetDayActivityOutput{}, err
	}

	days, err := orc.FetchDays(ctx, []string{input.Day})
	if err != nil {
		return nil, GetDayActivityOutput{}, err
	}

	return &mcp.CallToolResult{}, GetDayActivityOutput{
		Day:         days[0],
		HasActivity: days[0].HasActivity(),
	}, nil
}

type ListReportsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum reports to return (default 10)"`
}

type ListReportsOutput struct {
	Reports []models.Report `json:"reports"`
	Count   int             `json:"count"`
}

func (h *TimesheetHandlers) ListReports(ctx context.Context, req *mcp.CallToolRequest, input ListReportsInput) (*mcp.CallToolResult, ListReportsOutput, error) {
	reports, err := db.ListReports(h.db, input.Limit)
	if err != nil {
		return nil, ListReportsOutput{}, fmt.Errorf("failed to list reports: %w", err)
	}

	return &mcp.CallToolResult{}, ListReportsOutput{
		Reports: reports,
		Count:   len(reports),
	}, nil
}

type GetReportInput struct {
	ReportID string `json:"report_id" jsonschema:"Report ID from list_reports"`
}

type GetReportOutput struct {
	Report *models.Report `json:"report"`
}

func (h *TimesheetHandlers) GetReport(ctx context.Context, req *mcp.CallToolRequest, input GetReportInput) (*mcp.CallToolResult, GetReportOutput, error) {
	id, err := uuid.Parse(input.ReportID)
	if err != nil {
		return nil, GetReportOutput{}, fmt.Errorf("invalid report_id: %w", err)
	}

	rep, err := db.GetReport(h.db, id)
	if err != nil {
		return nil, GetReportOutput{}, fmt.Errorf("failed to get report: %w", err)
	}
	if rep == nil {
		return nil, GetReportOutput{}, fmt.Errorf("report not found: %s", input.ReportID)
	}

	return &mcp.CallToolResult{}, GetReportOutput{Report: rep}, nil
}
