// ABOUTME: Timesheet generation pipeline
// ABOUTME: Builds the provider set, fetches a range, distributes gaps, and records history
package report

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/punchcard/aggregate"
	"github.com/harperreed/punchcard/auth"
	"github.com/harperreed/punchcard/cache"
	"github.com/harperreed/punchcard/config"
	"github.com/harperreed/punchcard/db"
	"github.com/harperreed/punchcard/distribute"
	"github.com/harperreed/punchcard/models"
	"github.com/harperreed/punchcard/providers"
	"github.com/harperreed/punchcard/render"
)

// Options controls a single generation run.
type Options struct {
	From    string
	To      string
	Mode    distribute.Mode
	NoCache bool
}

// Result is everything a generation run produces: the distributed day
// records, the gap summary, and the persisted history row.
type Result struct {
	Days    []models.DayActivity
	Summary models.DistributionSummary
	Report  *models.Report
}

// BuildProviders constructs the activity and calendar providers named in the
// configuration. Calendar order is priority order: the first is primary, the
// second the fallback.
func BuildProviders(ctx context.Context, cfg *config.Config) ([]providers.ActivityProvider, providers.CalendarProvider, providers.CalendarProvider, error) {
	var activity []providers.ActivityProvider
	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderGitHub:
			activity = append(activity, providers.NewGitHubProvider(cfg.GitHubUsername, cfg.GitHubToken))
		case config.ProviderGitLab:
			activity = append(activity, providers.NewGitLabProvider(cfg.GitLabToken))
		}
	}

	var calendars []providers.CalendarProvider
	for _, name := range cfg.Calendars {
		switch name {
		case config.CalendarGoogle:
			token, err := auth.LoadToken()
			if err != nil {
				return nil, nil, nil, fmt.Errorf("google calendar enabled but not authorized (run `punchcard auth init`): %w", err)
			}
			gcal, err := providers.NewGoogleCalendarProvider(ctx, token)
			if err != nil {
				return nil, nil, nil, err
			}
			calendars = append(calendars, gcal)
		case config.CalendarICS:
			calendars = append(calendars, providers.NewICSProvider(cfg.ICSURL))
		}
	}

	var primary, secondary providers.CalendarProvider
	if len(calendars) > 0 {
		primary = calendars[0]
	}
	if len(calendars) > 1 {
		secondary = calendars[1]
	}
	return activity, primary, secondary, nil
}

// Generate runs the full pipeline against an already-built orchestrator:
// fetch the range, distribute gap days, render the plain body, and save a
// history row. database may be nil to skip history.
func Generate(ctx context.Context, database *sql.DB, orc *aggregate.Orchestrator, opts Options) (*Result, error) {
	days, err := orc.FetchRange(ctx, opts.From, opts.To)
	if err != nil {
		return nil, err
	}

	days, summary := distribute.Distribute(days, opts.Mode)

	rep := &models.Report{
		RunID:           ulid.Make().String(),
		FromDay:         opts.From,
		ToDay:           opts.To,
		Mode:            string(opts.Mode),
		GapDays:         summary.GapDays,
		DistributedDays: summary.DistributedDays,
		Body:            render.Plain(days, summary),
	}
	// History is best-effort: a failed save never loses the rendered report.
	if database != nil {
		if err := db.SaveReport(database, rep); err != nil {
			log.Printf("[report] failed to save report to history: %v", err)
		}
	}

	return &Result{Days: days, Summary: summary, Report: rep}, nil
}

// OpenCache opens the activity store honoring the configured TTL and the
// --no-cache escape hatch.
func OpenCache(cfg *config.Config, noCache bool) (*cache.ActivityCache, error) {
	store, err := cache.Open("", cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	if noCache {
		store.BypassReads()
	}
	return store, nil
}
