// ABOUTME: Report CLI commands
// ABOUTME: Generates timesheets and browses report history
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/harperreed/punchcard/aggregate"
	"github.com/harperreed/punchcard/config"
	"github.com/harperreed/punchcard/db"
	"github.com/harperreed/punchcard/distribute"
	"github.com/harperreed/punchcard/models"
	"github.com/harperreed/punchcard/render"
	"github.com/harperreed/punchcard/report"
)

// ReportGenerateCommand fetches a day range, distributes gaps, prints the
// styled timesheet, and records it in history.
func ReportGenerateCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	from := fs.String("from", "", "Start day, YYYY-MM-DD (required)")
	to := fs.String("to", "", "End day, YYYY-MM-DD, inclusive (required)")
	modeFlag := fs.String("mode", "proportional", "Gap distribution mode: proportional or phased")
	noCache := fs.Bool("no-cache", false, "Bypass cached provider results and refetch")
	plain := fs.Bool("plain", false, "Print without terminal styling")
	_ = fs.Parse(args)

	if *from == "" || *to == "" {
		return fmt.Errorf("--from and --to are required")
	}
	if err := models.ValidateDayKey(*from); err != nil {
		return err
	}
	if err := models.ValidateDayKey(*to); err != nil {
		return err
	}
	mode, err := distribute.ParseMode(*modeFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	store, err := report.OpenCache(cfg, *noCache)
	if err != nil {
		return err
	}
	activity, primary, secondary, err := report.BuildProviders(ctx, cfg)
	if err != nil {
		return err
	}
	orc := aggregate.New(store, activity, primary, secondary)

	res, err := report.Generate(ctx, database, orc, report.Options{
		From: *from,
		To:   *to,
		Mode: mode,
	})
	if err != nil {
		return err
	}

	if *plain {
		fmt.Print(res.Report.Body)
	} else {
		fmt.Print(render.Styled(res.Days, res.Summary))
	}
	fmt.Printf("\nSaved as report %s\n", res.Report.ID)

	return nil
}

// ReportListCommand lists recent reports, newest first.
func ReportListCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Max results")
	_ = fs.Parse(args)

	reports, err := db.ListReports(database, *limit)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	if len(reports) == 0 {
		fmt.Println("No reports yet. Run 'punchcard report generate' first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tRANGE\tMODE\tGAPS\tDISTRIBUTED\tCREATED")
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s\t%s..%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.FromDay, r.ToDay, r.Mode, r.GapDays, r.DistributedDays,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// ReportShowCommand prints a stored report body.
func ReportShowCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: punchcard report show <id>")
	}

	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid report id: %w", err)
	}

	rep, err := db.GetReport(database, id)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}
	if rep == nil {
		return fmt.Errorf("report not found: %s", id)
	}

	fmt.Print(rep.Body)
	return nil
}
