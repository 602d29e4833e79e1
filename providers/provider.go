// ABOUTME: Provider adapter contracts consumed by the fetch orchestrator
// ABOUTME: Defines ActivityProvider, CalendarProvider, and the kind constants used as cache namespaces
package providers

import (
	"context"

	"github.com/harperreed/punchcard/cache"
	"github.com/harperreed/punchcard/models"
)

// Provider kind constants. Each kind doubles as the cache namespace for that
// provider; calendar kinds carry the calendar prefix so cache clears can tell
// the two families apart.
const (
	KindGitHub         = "github"
	KindGitLab         = "gitlab"
	KindGoogleCalendar = cache.CalendarKindPrefix + "gcal"
	KindICS            = cache.CalendarKindPrefix + "ics"
)

// ActivityProvider is a code-activity source (commits, reviews, issues).
// Adapters own retry, paging, and rate-limit concerns; the orchestrator sees
// one fallible call per day. A call must never be made for a day later than
// the caller's today in local time.
type ActivityProvider interface {
	Kind() string
	FetchActivity(ctx context.Context, dayKey string) (models.ActivityPayload, error)
}

// CalendarProvider is a meeting source.
type CalendarProvider interface {
	Kind() string
	FetchEvents(ctx context.Context, dayKey string) ([]models.CalendarEvent, error)
}
