// ABOUTME: Cache MCP tool handlers
// ABOUTME: Exposes cache statistics and scoped clearing as tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/punchcard/cache"
)

type CacheHandlers struct {
	// Zero values mean the default XDG path and default TTL.
	path string
	ttl  time.Duration
}

func NewCacheHandlers() *CacheHandlers {
	return &CacheHandlers{}
}

func (h *CacheHandlers) open() (*cache.ActivityCache, error) {
	return cache.Open(h.path, h.ttl)
}

type CacheStatsInput struct{}

type CacheStatsOutput struct {
	Kinds   []string    `json:"kinds"`
	Entries int         `json:"entries"`
	Stats   cache.Stats `json:"stats"`
}

func (h *CacheHandlers) CacheStats(ctx context.Context, req *mcp.CallToolRequest, input CacheStatsInput) (*mcp.CallToolResult, CacheStatsOutput, error) {
	store, err := h.open()
	if err != nil {
		return nil, CacheStatsOutput{}, err
	}

	stats := store.Stats()
	return &mcp.CallToolResult{}, CacheStatsOutput{
		Kinds:   store.Kinds(),
		Entries: stats.Entries,
		Stats:   stats,
	}, nil
}

type ClearCacheInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"What to clear: all (default), calendar, expired, or a provider kind like github"`
}

type ClearCacheOutput struct {
	Scope     string `json:"scope"`
	Remaining int    `json:"remaining"`
}

func (h *CacheHandlers) ClearCache(ctx context.Context, req *mcp.CallToolRequest, input ClearCacheInput) (*mcp.CallToolResult, ClearCacheOutput, error) {
	store, err := h.open()
	if err != nil {
		return nil, ClearCacheOutput{}, err
	}

	scope := input.Scope
	if scope == "" {
		scope = "all"
	}

	switch scope {
	case "all":
		err = store.ClearAll()
	case "calendar":
		err = store.ClearCalendar()
	case "expired":
		err = store.ClearExpired()
	default:
		err = store.ClearKind(scope)
	}
	if err != nil {
		return nil, ClearCacheOutput{}, fmt.Errorf("failed to clear cache: %w", err)
	}

	return &mcp.CallToolResult{}, ClearCacheOutput{
		Scope:     scope,
		Remaining: store.Stats().Entries,
	}, nil
}
