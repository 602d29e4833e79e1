// ABOUTME: Cache CLI commands
// ABOUTME: Inspects and clears the activity cache
package cli

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/punchcard/cache"
	"github.com/harperreed/punchcard/config"
)

func openCache() (*cache.ActivityCache, error) {
	// The configured TTL decides what counts as expired.
	cfg, err := config.Load()
	if err != nil {
		return cache.Open("", 0)
	}
	return cache.Open("", cfg.CacheTTL)
}

// CacheStatsCommand prints per-kind entry counts and hit/miss counters.
func CacheStatsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	_ = fs.Parse(args)

	store, err := openCache()
	if err != nil {
		return err
	}

	stats := store.Stats()
	fmt.Printf("Cache file: %s\n", cache.DefaultPath())
	fmt.Printf("Entries: %d\n\n", stats.Entries)

	kinds := store.Kinds()
	if len(kinds) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tHITS\tMISSES")
	for _, kind := range kinds {
		st := stats.Kinds[kind]
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", kind, st.Hits, st.Misses)
	}
	return w.Flush()
}

// CacheClearCommand clears the requested scope: all, calendar, expired, or a
// single provider kind.
func CacheClearCommand(args []string) error {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	scope := fs.String("scope", "all", "What to clear: all, calendar, expired, or a provider kind like github")
	_ = fs.Parse(args)

	store, err := openCache()
	if err != nil {
		return err
	}

	switch *scope {
	case "all":
		err = store.ClearAll()
	case "calendar":
		err = store.ClearCalendar()
	case "expired":
		err = store.ClearExpired()
	default:
		err = store.ClearKind(*scope)
	}
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Printf("Cleared cache scope %q (%d entries remain)\n", *scope, store.Stats().Entries)
	return nil
}
