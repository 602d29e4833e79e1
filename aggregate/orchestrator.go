// ABOUTME: Concurrent multi-source fetch orchestrator
// ABOUTME: Runs one cache-checked task per (provider, day) with per-provider failure isolation
package aggregate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"

	"github.com/harperreed/punchcard/cache"
	"github.com/harperreed/punchcard/models"
	"github.com/harperreed/punchcard/providers"
)

// Orchestrator fans out one cache-checked fetch per (provider, day). All
// providers for a day run concurrently and all days run concurrently; a
// single provider failure never aborts another provider's or another day's
// result. It raises only for caller-input errors, before any I/O.
type Orchestrator struct {
	cache     *cache.ActivityCache
	providers []providers.ActivityProvider
	primary   providers.CalendarProvider
	secondary providers.CalendarProvider
	now       func() time.Time
}

// New builds an orchestrator over an enabled provider set. The order of
// provs fixes the merge order of per-day payloads, so repeated runs over
// identical provider data are reproducible. Either calendar provider may be
// nil.
func New(c *cache.ActivityCache, provs []providers.ActivityProvider, primary, secondary providers.CalendarProvider) *Orchestrator {
	return &Orchestrator{
		cache:     c,
		providers: provs,
		primary:   primary,
		secondary: secondary,
		now:       time.Now,
	}
}

// FetchRange fetches every day from fromKey through toKey inclusive.
func (o *Orchestrator) FetchRange(ctx context.Context, fromKey, toKey string) ([]models.DayActivity, error) {
	days, err := models.DayKeysBetween(fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return o.FetchDays(ctx, days)
}

// FetchDays produces one DayActivity per requested day, in the order the
// days were given, regardless of completion order.
func (o *Orchestrator) FetchDays(ctx context.Context, days []string) ([]models.DayActivity, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("no days requested")
	}
	for _, day := range days {
		if err := models.ValidateDayKey(day); err != nil {
			return nil, err
		}
	}
	if len(o.providers) == 0 && o.primary == nil && o.secondary == nil {
		return nil, fmt.Errorf("no providers enabled")
	}

	runID := ulid.Make().String()
	log.Printf("[aggregate] run %s: fetching %d day(s) across %d code provider(s)", runID, len(days), len(o.providers))

	// iter.Map preserves input order while running days concurrently.
	results := iter.Map(days, func(day *string) models.DayActivity {
		return o.fetchDay(ctx, *day, runID)
	})

	log.Printf("[aggregate] run %s: done", runID)
	return results, nil
}

// fetchDay never fails: every provider error is neutralized to an empty
// contribution so the day record is always complete.
func (o *Orchestrator) fetchDay(ctx context.Context, day, runID string) models.DayActivity {
	// Asking a provider about the future produces meaningless calls.
	if day > models.DayKeyOf(o.now()) {
		log.Printf("[aggregate] run %s: %s is in the future, skipping fetch", runID, day)
		return models.DayActivity{Day: day}
	}

	payloads := make([]models.ActivityPayload, len(o.providers))
	var events []models.CalendarEvent

	var wg conc.WaitGroup
	for i, p := range o.providers {
		wg.Go(func() {
			payloads[i] = o.fetchProvider(ctx, p, day, runID)
		})
	}
	wg.Go(func() {
		events = o.fetchCalendar(ctx, day, runID)
	})
	wg.Wait()

	// Merge in provider-enablement order.
	var merged models.ActivityPayload
	for _, p := range payloads {
		merged.Append(p)
	}

	return models.DayActivity{
		Day:      day,
		Events:   events,
		Activity: merged,
	}
}

func (o *Orchestrator) fetchProvider(ctx context.Context, p providers.ActivityProvider, day, runID string) models.ActivityPayload {
	if cached, ok := o.cache.GetActivity(p.Kind(), day); ok {
		log.Printf("[aggregate] run %s: %s/%s served from cache", runID, p.Kind(), day)
		return cached
	}

	payload, err := p.FetchActivity(ctx, day)
	if err != nil {
		log.Printf("[aggregate] run %s: %s fetch for %s failed, contributing empty payload: %v", runID, p.Kind(), day, err)
		return models.ActivityPayload{}
	}

	// A write failure does not invalidate the freshly fetched result.
	if err := o.cache.SetActivity(p.Kind(), day, payload); err != nil {
		log.Printf("[aggregate] run %s: failed to cache %s/%s: %v", runID, p.Kind(), day, err)
	}
	return payload
}

// fetchCalendar applies the priority policy: try the primary provider, and
// only when it yields zero events (errors count as zero) try the secondary.
func (o *Orchestrator) fetchCalendar(ctx context.Context, day, runID string) []models.CalendarEvent {
	events := o.fetchCalendarProvider(ctx, o.primary, day, runID)
	if len(events) > 0 {
		return events
	}
	return o.fetchCalendarProvider(ctx, o.secondary, day, runID)
}

func (o *Orchestrator) fetchCalendarProvider(ctx context.Context, p providers.CalendarProvider, day, runID string) []models.CalendarEvent {
	if p == nil {
		return nil
	}

	if cached, ok := o.cache.GetEvents(p.Kind(), day); ok {
		return cached
	}

	events, err := p.FetchEvents(ctx, day)
	if err != nil {
		log.Printf("[aggregate] run %s: %s fetch for %s failed, treating as zero events: %v", runID, p.Kind(), day, err)
		return nil
	}

	if err := o.cache.SetEvents(p.Kind(), day, events); err != nil {
		log.Printf("[aggregate] run %s: failed to cache %s/%s: %v", runID, p.Kind(), day, err)
	}
	return events
}
