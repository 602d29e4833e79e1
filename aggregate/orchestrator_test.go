// ABOUTME: Tests for the fetch orchestrator
// ABOUTME: Covers output ordering, failure isolation, cache use, calendar fallback, and input validation
package aggregate

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/punchcard/cache"
	"github.com/harperreed/punchcard/models"
	"github.com/harperreed/punchcard/providers"
)

type fakeProvider struct {
	kind  string
	delay time.Duration
	fn    func(day string) (models.ActivityPayload, error)

	mu    sync.Mutex
	calls map[string]int
}

func newFakeProvider(kind string, fn func(day string) (models.ActivityPayload, error)) *fakeProvider {
	return &fakeProvider{kind: kind, fn: fn, calls: make(map[string]int)}
}

func (f *fakeProvider) Kind() string { return f.kind }

func (f *fakeProvider) FetchActivity(ctx context.Context, day string) (models.ActivityPayload, error) {
	f.mu.Lock()
	f.calls[day]++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.fn(day)
}

func (f *fakeProvider) callCount(day string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[day]
}

type fakeCalendar struct {
	kind string
	fn   func(day string) ([]models.CalendarEvent, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeCalendar) Kind() string { return f.kind }

func (f *fakeCalendar) FetchEvents(ctx context.Context, day string) ([]models.CalendarEvent, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(day)
}

func testCache(t *testing.T) *cache.ActivityCache {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "activity.json"), time.Hour)
	if err != nil {
		t.Fatalf("cache.Open failed: %v", err)
	}
	return c
}

func commitsPayload(msgs ...string) models.ActivityPayload {
	var p models.ActivityPayload
	for _, m := range msgs {
		p.Commits = append(p.Commits, models.Commit{Message: m, Project: "alpha"})
	}
	return p
}

func TestOutputOrderMatchesInputOrder(t *testing.T) {
	// Later days respond faster than earlier ones; output order must still
	// match input order.
	delays := map[string]time.Duration{
		"2025-01-06": 30 * time.Millisecond,
		"2025-01-07": 20 * time.Millisecond,
		"2025-01-08": 0,
	}
	p := newFakeProvider("github", func(day string) (models.ActivityPayload, error) {
		time.Sleep(delays[day])
		return commitsPayload("work on " + day), nil
	})

	o := New(testCache(t), []providers.ActivityProvider{p}, nil, nil)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	days := []string{"2025-01-06", "2025-01-07", "2025-01-08"}
	got, err := o.FetchDays(context.Background(), days)
	if err != nil {
		t.Fatalf("FetchDays failed: %v", err)
	}

	if len(got) != len(days) {
		t.Fatalf("expected %d records, got %d", len(days), len(got))
	}
	for i, day := range days {
		if got[i].Day != day {
			t.Errorf("result[%d].Day = %s, want %s", i, got[i].Day, day)
		}
	}
}

func TestProviderFailureIsIsolated(t *testing.T) {
	failing := newFakeProvider("github", func(day string) (models.ActivityPayload, error) {
		if day == "2025-01-07" {
			return models.ActivityPayload{}, fmt.Errorf("rate limited")
		}
		return commitsPayload("gh " + day), nil
	})
	healthy := newFakeProvider("gitlab", func(day string) (models.ActivityPayload, error) {
		return commitsPayload("gl-one "+day, "gl-two "+day), nil
	})

	o := New(testCache(t), []providers.ActivityProvider{failing, healthy}, nil, nil)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	days := []string{"2025-01-06", "2025-01-07", "2025-01-08"}
	got, err := o.FetchDays(context.Background(), days)
	if err != nil {
		t.Fatalf("expected no error from isolated provider failure, got %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 complete records, got %d", len(got))
	}

	// The failing provider contributes empty only on the failing day; the
	// healthy provider's 2 commits still arrive.
	if n := len(got[1].Activity.Commits); n != 2 {
		t.Errorf("expected 2 commits on failure day, got %d: %+v", n, got[1].Activity.Commits)
	}
	if n := len(got[0].Activity.Commits); n != 3 {
		t.Errorf("expected 3 commits on healthy day, got %d", n)
	}
}

func TestMergeOrderFollowsProviderEnablement(t *testing.T) {
	first := newFakeProvider("github", func(day string) (models.ActivityPayload, error) {
		return commitsPayload("from github"), nil
	})
	second := newFakeProvider("gitlab", func(day string) (models.ActivityPayload, error) {
		return commitsPayload("from gitlab"), nil
	})

	o := New(testCache(t), []providers.ActivityProvider{first, second}, nil, nil)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	got, err := o.FetchDays(context.Background(), []string{"2025-01-06"})
	if err != nil {
		t.Fatalf("FetchDays failed: %v", err)
	}

	commits := got[0].Activity.Commits
	if len(commits) != 2 || commits[0].Message != "from github" || commits[1].Message != "from gitlab" {
		t.Errorf("merge order wrong: %+v", commits)
	}
}

func TestCacheHitSkipsProviderCall(t *testing.T) {
	p := newFakeProvider("github", func(day string) (models.ActivityPayload, error) {
		return commitsPayload("fetched"), nil
	})

	c := testCache(t)
	o := New(c, []providers.ActivityProvider{p}, nil, nil)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	if _, err := o.FetchDays(context.Background(), []string{"2025-01-06"}); err != nil {
		t.Fatalf("first FetchDays failed: %v", err)
	}
	if _, err := o.FetchDays(context.Background(), []string{"2025-01-06"}); err != nil {
		t.Fatalf("second FetchDays failed: %v", err)
	}

	if n := p.callCount("2025-01-06"); n != 1 {
		t.Errorf("expected 1 provider call, got %d", n)
	}

	// The second run was served from cache, visible in the hit counter.
	stats := c.Stats()
	if stats.Kinds["github"].Hits != 1 || stats.Kinds["github"].Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %+v", stats.Kinds["github"])
	}
}

func TestCalendarFallbackOnZeroEvents(t *testing.T) {
	primary := &fakeCalendar{kind: "calendar:gcal", fn: func(day string) ([]models.CalendarEvent, error) {
		return nil, nil
	}}
	secondary := &fakeCalendar{kind: "calendar:ics", fn: func(day string) ([]models.CalendarEvent, error) {
		return []models.CalendarEvent{{Title: "fallback standup"}}, nil
	}}

	o := New(testCache(t), nil, primary, secondary)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	got, err := o.FetchDays(context.Background(), []string{"2025-01-06"})
	if err != nil {
		t.Fatalf("FetchDays failed: %v", err)
	}

	if len(got[0].Events) != 1 || got[0].Events[0].Title != "fallback standup" {
		t.Errorf("expected fallback events, got %+v", got[0].Events)
	}
}

func TestCalendarFallbackOnPrimaryError(t *testing.T) {
	primary := &fakeCalendar{kind: "calendar:gcal", fn: func(day string) ([]models.CalendarEvent, error) {
		return nil, fmt.Errorf("auth expired")
	}}
	secondary := &fakeCalendar{kind: "calendar:ics", fn: func(day string) ([]models.CalendarEvent, error) {
		return []models.CalendarEvent{{Title: "ics event"}}, nil
	}}

	o := New(testCache(t), nil, primary, secondary)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	got, err := o.FetchDays(context.Background(), []string{"2025-01-06"})
	if err != nil {
		t.Fatalf("expected primary calendar error to be swallowed, got %v", err)
	}
	if len(got[0].Events) != 1 {
		t.Errorf("expected fallback to secondary, got %+v", got[0].Events)
	}
}

func TestCalendarPrimaryWinsWhenNonEmpty(t *testing.T) {
	primary := &fakeCalendar{kind: "calendar:gcal", fn: func(day string) ([]models.CalendarEvent, error) {
		return []models.CalendarEvent{{Title: "primary meeting"}}, nil
	}}
	secondary := &fakeCalendar{kind: "calendar:ics", fn: func(day string) ([]models.CalendarEvent, error) {
		return []models.CalendarEvent{{Title: "should not appear"}}, nil
	}}

	o := New(testCache(t), nil, primary, secondary)
	o.now = func() time.Time { return mustDay(t, "2025-01-09") }

	got, err := o.FetchDays(context.Background(), []string{"2025-01-06"})
	if err != nil {
		t.Fatalf("FetchDays failed: %v", err)
	}

	if len(got[0].Events) != 1 || got[0].Events[0].Title != "primary meeting" {
		t.Errorf("expected primary events, got %+v", got[0].Events)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called when primary has events, got %d calls", secondary.calls)
	}
}

func TestFutureDayShortCircuits(t *testing.T) {
	p := newFakeProvider("github", func(day string) (models.ActivityPayload, error) {
		return commitsPayload("should not happen"), nil
	})

	o := New(testCache(t), []providers.ActivityProvider{p}, nil, nil)
	o.now = func() time.Time { return mustDay(t, "2025-01-07") }

	got, err := o.FetchDays(context.Background(), []string{"2025-01-07", "2025-01-08"})
	if err != nil {
		t.Fatalf("FetchDays failed: %v", err)
	}

	if !got[1].Activity.IsEmpty() || len(got[1].Events) != 0 {
		t.Errorf("future day should be empty, got %+v", got[1])
	}
	if n := p.callCount("2025-01-08"); n != 0 {
		t.Errorf("provider called for future day %d time(s)", n)
	}
	if n := p.callCount("2025-01-07"); n != 1 {
		t.Errorf("today should still be fetched, got %d calls", n)
	}
}

func TestCallerInputErrors(t *testing.T) {
	p := newFakeProvider("github", func(day string) (models.ActivityPayload, error) {
		return models.ActivityPayload{}, nil
	})
	o := New(testCache(t), []providers.ActivityProvider{p}, nil, nil)

	if _, err := o.FetchDays(context.Background(), nil); err == nil {
		t.Error("expected error for empty day set")
	}
	if _, err := o.FetchDays(context.Background(), []string{"01/06/2025"}); err == nil {
		t.Error("expected error for malformed day key")
	}
	if _, err := o.FetchRange(context.Background(), "2025-01-08", "2025-01-06"); err == nil {
		t.Error("expected error for inverted range")
	}

	empty := New(testCache(t), nil, nil, nil)
	if _, err := empty.FetchDays(context.Background(), []string{"2025-01-06"}); err == nil {
		t.Error("expected error with no providers enabled")
	}

	if n := p.callCount("01/06/2025"); n != 0 {
		t.Error("provider was called despite caller-input error")
	}
}

func mustDay(t *testing.T, key string) time.Time {
	t.Helper()
	day, err := models.ParseDayKey(key)
	if err != nil {
		t.Fatalf("bad day key %s: %v", key, err)
	}
	// Midday avoids any boundary ambiguity around local midnight.
	return day.Add(12 * time.Hour)
}
