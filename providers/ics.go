// ABOUTME: ICS feed adapter for published calendars (Outlook et al)
// ABOUTME: Fetches and parses an ICS subscription URL into the common event shape
package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/avast/retry-go/v4"

	"github.com/harperreed/punchcard/models"
)

// ICSProvider reads a published calendar feed. Outlook, Fastmail, and most
// hosted calendars expose one of these behind a secret URL, which makes this
// the zero-OAuth fallback calendar source.
type ICSProvider struct {
	url    string
	client *http.Client
}

func NewICSProvider(url string) *ICSProvider {
	return &ICSProvider{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *ICSProvider) Kind() string { return KindICS }

// FetchEvents downloads the whole feed and keeps the timed events that fall
// on dayKey. All-day entries are skipped, matching the Google adapter.
func (p *ICSProvider) FetchEvents(ctx context.Context, dayKey string) ([]models.CalendarEvent, error) {
	if err := models.ValidateDayKey(dayKey); err != nil {
		return nil, err
	}

	body, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICS feed: %w", err)
	}

	var events []models.CalendarEvent
	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve, dayKey)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	return events, nil
}

func (p *ICSProvider) fetch(ctx context.Context) ([]byte, error) {
	var body []byte
	err := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("ics feed returned %d", resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
		return err
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ICS feed: %w", err)
	}
	return body, nil
}

// parseVEvent converts one VEVENT into a CalendarEvent when it is a timed
// event on the requested local day.
func parseVEvent(ve *ical.VEvent, dayKey string) (models.CalendarEvent, bool) {
	// All-day events have a DATE-valued DTSTART; skip them.
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || !strings.Contains(dtStart.Value, "T") {
		return models.CalendarEvent{}, false
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return models.CalendarEvent{}, false
	}
	if models.DayKeyOf(start) != dayKey {
		return models.CalendarEvent{}, false
	}

	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}

	title := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}

	attendees := len(ve.GetProperties(ical.ComponentPropertyAttendee))

	return models.CalendarEvent{
		Title:         title,
		Start:         start,
		End:           end,
		AttendeeCount: attendees,
	}, true
}
