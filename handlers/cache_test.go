// ABOUTME: Tests for cache MCP tool handlers
// ABOUTME: Validates stats output and scoped clearing
package handlers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/punchcard/cache"
	"github.com/harperreed/punchcard/models"
	"github.com/harperreed/punchcard/providers"
)

func seededCacheHandlers(t *testing.T) *CacheHandlers {
	t.Helper()

	path := filepath.Join(t.TempDir(), "activity.json")
	store, err := cache.Open(path, time.Hour)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	payload := models.ActivityPayload{Commits: []models.Commit{{Message: "fix parser", Project: "alpha"}}}
	if err := store.SetActivity(providers.KindGitHub, "2025-01-06", payload); err != nil {
		t.Fatalf("SetActivity failed: %v", err)
	}
	if err := store.SetEvents(providers.KindICS, "2025-01-06", []models.CalendarEvent{{Title: "standup"}}); err != nil {
		t.Fatalf("SetEvents failed: %v", err)
	}

	return &CacheHandlers{path: path, ttl: time.Hour}
}

func TestCacheStatsHandler(t *testing.T) {
	handler := seededCacheHandlers(t)

	_, output, err := handler.CacheStats(context.Background(), nil, CacheStatsInput{})
	if err != nil {
		t.Fatalf("CacheStats failed: %v", err)
	}

	if output.Entries != 2 {
		t.Errorf("Expected 2 entries, got %d", output.Entries)
	}
	if len(output.Kinds) != 2 {
		t.Errorf("Expected 2 kinds, got %v", output.Kinds)
	}
}

func TestClearCacheCalendarScope(t *testing.T) {
	handler := seededCacheHandlers(t)

	_, output, err := handler.ClearCache(context.Background(), nil, ClearCacheInput{Scope: "calendar"})
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}

	if output.Scope != "calendar" {
		t.Errorf("Expected calendar scope, got %s", output.Scope)
	}
	if output.Remaining != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", output.Remaining)
	}
}

func TestClearCacheDefaultsToAll(t *testing.T) {
	handler := seededCacheHandlers(t)

	_, output, err := handler.ClearCache(context.Background(), nil, ClearCacheInput{})
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}

	if output.Scope != "all" {
		t.Errorf("Expected all scope, got %s", output.Scope)
	}
	if output.Remaining != 0 {
		t.Errorf("Expected 0 remaining entries, got %d", output.Remaining)
	}
}
