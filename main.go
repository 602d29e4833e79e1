// ABOUTME: Entry point for punchcard timesheet generator
// ABOUTME: Routes to report, cache, auth, and MCP commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/harperreed/punchcard/cli"
	"github.com/harperreed/punchcard/db"
)

const version = "0.1.0"

func main() {
	// A .env file in the working directory supplies provider tokens during
	// development; the environment always wins.
	_ = godotenv.Load()

	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Report history database path (default: ~/.local/share/punchcard/punchcard.db)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("punchcard version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "mcp":
		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.MCPCommand(database); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "auth":
		if len(commandArgs) == 0 {
			fmt.Println("Error: auth requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		switch commandArgs[0] {
		case "init":
			if err := cli.AuthInitCommand(commandArgs[1:]); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown auth command: %s\n\n", commandArgs[0])
			printUsage()
			os.Exit(1)
		}

	case "report":
		if len(commandArgs) == 0 {
			fmt.Println("Error: report requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		database, err := db.OpenDatabase(getDatabasePath(*dbPath))
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		switch commandArgs[0] {
		case "generate":
			if err := cli.ReportGenerateCommand(database, commandArgs[1:]); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "list":
			if err := cli.ReportListCommand(database, commandArgs[1:]); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "show":
			if err := cli.ReportShowCommand(database, commandArgs[1:]); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown report command: %s\n\n", commandArgs[0])
			printUsage()
			os.Exit(1)
		}

	case "cache":
		if len(commandArgs) == 0 {
			fmt.Println("Error: cache requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		switch commandArgs[0] {
		case "stats":
			if err := cli.CacheStatsCommand(commandArgs[1:]); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "clear":
			if err := cli.CacheClearCommand(commandArgs[1:]); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown cache command: %s\n\n", commandArgs[0])
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func getDatabasePath(dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return db.DefaultPath()
}

func printUsage() {
	fmt.Printf(`punchcard v%s - Daily work-signal timesheet generator

USAGE:
  punchcard [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Report history database path (default: ~/.local/share/punchcard/punchcard.db)

COMMANDS:
  report                 Generate and browse timesheets
  cache                  Inspect and clear the activity cache
  auth                   Google Calendar authorization
  mcp                    Start MCP server for Claude Desktop

REPORT COMMANDS:
  punchcard report generate   Generate a timesheet for a day range
    --from <YYYY-MM-DD>          Start day (required)
    --to <YYYY-MM-DD>            End day, inclusive (required)
    --mode <mode>                Gap distribution: proportional or phased (default: proportional)
    --no-cache                   Bypass cached provider results and refetch
    --plain                      Print without terminal styling

  punchcard report list       List recent reports
    --limit <n>                  Max results (default: 10)

  punchcard report show <id>  Print a stored report body

CACHE COMMANDS:
  punchcard cache stats       Show entry counts and hit/miss statistics

  punchcard cache clear       Clear cached provider results
    --scope <scope>              all, calendar, expired, or a provider kind like github (default: all)

AUTH COMMANDS:
  punchcard auth init         Run the Google OAuth flow and save the calendar token

CONFIGURATION (environment or .env):
  PUNCHCARD_PROVIDERS     Comma-separated code providers: github, gitlab
  PUNCHCARD_CALENDARS     Comma-separated calendars in priority order: gcal, ics
  GITHUB_USERNAME         GitHub username (github provider)
  GITHUB_TOKEN            GitHub token, optional but raises rate limits
  GITLAB_TOKEN            GitLab personal access token (gitlab provider)
  PUNCHCARD_ICS_URL       ICS feed URL (ics calendar)
  PUNCHCARD_CACHE_TTL     Cache entry lifetime, e.g. 30m or 2h (default: 1h)
  GOOGLE_CLIENT_ID        OAuth client ID (gcal calendar)
  GOOGLE_CLIENT_SECRET    OAuth client secret (gcal calendar)

EXAMPLES:
  # Generate last week's timesheet
  punchcard report generate --from 2025-01-06 --to 2025-01-10

  # Phased distribution, skipping the cache
  punchcard report generate --from 2025-01-06 --to 2025-01-10 --mode phased --no-cache

  # Start MCP server for Claude Desktop
  punchcard mcp

`, version)
}
