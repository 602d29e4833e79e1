// ABOUTME: Google Calendar adapter for the primary meeting signal
// ABOUTME: Creates an authenticated Calendar service and buckets events into local days
package providers

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harperreed/punchcard/auth"
	"github.com/harperreed/punchcard/models"
)

// GoogleCalendarProvider reads the user's primary Google calendar.
type GoogleCalendarProvider struct {
	service *calendar.Service
}

// NewGoogleCalendarProvider builds a Calendar API client from a saved OAuth
// token.
func NewGoogleCalendarProvider(ctx context.Context, token *oauth2.Token) (*GoogleCalendarProvider, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	config := auth.NewOAuthConfig()
	client := config.Client(ctx, token)

	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleCalendarProvider{service: service}, nil
}

func (p *GoogleCalendarProvider) Kind() string { return KindGoogleCalendar }

// FetchEvents returns the meetings on dayKey. All-day, cancelled, and
// declined events are skipped: they are not meeting signal.
func (p *GoogleCalendarProvider) FetchEvents(ctx context.Context, dayKey string) ([]models.CalendarEvent, error) {
	dayStart, err := models.ParseDayKey(dayKey)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	result, err := p.service.Events.List("primary").
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	var events []models.CalendarEvent
	for _, item := range result.Items {
		if skip, _ := shouldSkipGoogleEvent(item); skip {
			continue
		}

		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			continue
		}
		end := start
		if item.End != nil && item.End.DateTime != "" {
			if parsed, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				end = parsed
			}
		}

		// Timed events near midnight can bleed across the requested window.
		if models.DayKeyOf(start) != dayKey {
			continue
		}

		events = append(events, models.CalendarEvent{
			Title:         item.Summary,
			Start:         start,
			End:           end,
			AttendeeCount: len(item.Attendees),
		})
	}

	return events, nil
}

// shouldSkipGoogleEvent filters out events that carry no meeting signal.
// Returns (true, reason) when the event should be skipped.
func shouldSkipGoogleEvent(event *calendar.Event) (bool, string) {
	if event == nil {
		return true, "nil event"
	}
	if event.Start == nil {
		return true, "missing start time"
	}
	if event.Start.Date != "" {
		return true, "all-day event"
	}
	if event.Status == "cancelled" {
		return true, "cancelled"
	}
	for _, attendee := range event.Attendees {
		if attendee.Self && attendee.ResponseStatus == "declined" {
			return true, "declined"
		}
	}
	return false, ""
}
