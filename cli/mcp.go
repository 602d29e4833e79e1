// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"
	"database/sql"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/punchcard/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(db *sql.DB) error {
	log.Println("Starting punchcard MCP server...")

	timesheetHandlers := handlers.NewTimesheetHandlers(db)
	cacheHandlers := handlers.NewCacheHandlers()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "punchcard",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_timesheet",
		Description: "Generate a timesheet for a day range, distributing burst-day activity into empty days",
	}, timesheetHandlers.GenerateTimesheet)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_day_activity",
		Description: "Fetch commits, reviews, issues, and meetings for a single day without gap distribution",
	}, timesheetHandlers.GetDayActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reports",
		Description: "List previously generated timesheet reports, newest first",
	}, timesheetHandlers.ListReports)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_report",
		Description: "Fetch a stored timesheet report body by ID",
	}, timesheetHandlers.GetReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Show activity cache entry counts and hit/miss statistics",
	}, cacheHandlers.CacheStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Clear the activity cache: all, calendar, expired, or one provider kind",
	}, cacheHandlers.ClearCache)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
