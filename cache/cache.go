// ABOUTME: Time-bounded activity cache in front of every provider call
// ABOUTME: Flat JSON file persistence with per-kind namespaces and hit/miss accounting
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"

	"github.com/harperreed/punchcard/models"
)

// DefaultTTL is the maximum age of an entry before it stops being a hit.
const DefaultTTL = time.Hour

// CalendarKindPrefix marks namespaces that hold calendar events rather than
// code activity. Clearing calendar namespaces never disturbs code namespaces
// and vice versa.
const CalendarKindPrefix = "calendar:"

// Entry is one cached fetch result for a (kind, dayKey) pair.
type Entry struct {
	Payload  models.ActivityPayload `json:"payload,omitempty"`
	Events   []models.CalendarEvent `json:"events,omitempty"`
	CachedAt time.Time              `json:"cached_at"`
	Source   string                 `json:"source"`
}

// KindStats holds hit/miss counters for one namespace.
type KindStats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// Stats is the observability snapshot returned by ActivityCache.Stats.
type Stats struct {
	Kinds   map[string]KindStats `json:"kinds"`
	Hits    int                  `json:"hits"`
	Misses  int                  `json:"misses"`
	Entries int                  `json:"entries"`
	HitRate float64              `json:"hit_rate"`
}

type fileFormat struct {
	Entries map[string]map[string]Entry `json:"entries"`
}

// ActivityCache maps (kind, dayKey) to a previously fetched payload with
// age-based expiry. The whole store lives in one flat file, loaded once per
// process and persisted after every mutation. A single write lock serializes
// persists so concurrent Set calls from the orchestrator cannot interleave
// and corrupt the file.
type ActivityCache struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	bypass bool

	mu      sync.Mutex
	entries map[string]map[string]Entry
	stats   map[string]*KindStats
}

// DefaultPath returns the XDG cache location for the activity store.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "punchcard", "activity.json")
}

// Open loads the cache file at path, or starts empty when the file is
// missing, unreadable, or corrupt. Storage trouble never fails a run.
func Open(path string, ttl time.Duration) (*ActivityCache, error) {
	if path == "" {
		path = DefaultPath()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &ActivityCache{
		path:    path,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]map[string]Entry),
		stats:   make(map[string]*KindStats),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[cache] unreadable cache file %s, starting empty: %v", path, err)
		}
		return c, nil
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		log.Printf("[cache] corrupt cache file %s, starting empty: %v", path, err)
		return c, nil
	}
	if ff.Entries != nil {
		c.entries = ff.Entries
	}
	return c, nil
}

// GetActivity returns the cached code-activity payload for (kind, day).
// An entry older than the TTL is evicted and reported as a miss. Every call
// counts toward the kind's hit or miss counter.
func (c *ActivityCache) GetActivity(kind, day string) (models.ActivityPayload, bool) {
	entry, ok := c.lookup(kind, day)
	if !ok {
		return models.ActivityPayload{}, false
	}
	return entry.Payload, true
}

// GetEvents returns the cached calendar events for (kind, day).
func (c *ActivityCache) GetEvents(kind, day string) ([]models.CalendarEvent, bool) {
	entry, ok := c.lookup(kind, day)
	if !ok {
		return nil, false
	}
	return entry.Events, true
}

func (c *ActivityCache) lookup(kind, day string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bypass {
		c.kindStats(kind).Misses++
		return Entry{}, false
	}

	entry, ok := c.entries[kind][day]
	if ok && c.now().Sub(entry.CachedAt) > c.ttl {
		delete(c.entries[kind], day)
		ok = false
	}

	st := c.kindStats(kind)
	if ok {
		st.Hits++
	} else {
		st.Misses++
	}
	return entry, ok
}

// BypassReads forces every subsequent lookup to miss. Writes still go
// through, so a bypassed run refreshes the file with fetched data.
func (c *ActivityCache) BypassReads() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bypass = true
}

// SetActivity stores a code-activity payload and persists the whole store.
// The in-memory entry survives a persist failure; the error is for logging.
func (c *ActivityCache) SetActivity(kind, day string, payload models.ActivityPayload) error {
	return c.store(kind, day, Entry{Payload: payload, Source: kind})
}

// SetEvents stores calendar events and persists the whole store.
func (c *ActivityCache) SetEvents(kind, day string, events []models.CalendarEvent) error {
	return c.store(kind, day, Entry{Events: events, Source: kind})
}

func (c *ActivityCache) store(kind, day string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.CachedAt = c.now()
	if c.entries[kind] == nil {
		c.entries[kind] = make(map[string]Entry)
	}
	c.entries[kind][day] = entry
	return c.persistLocked()
}

// ClearAll drops every entry in every namespace.
func (c *ActivityCache) ClearAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]map[string]Entry)
	return c.persistLocked()
}

// ClearKind drops one namespace, leaving all others untouched.
func (c *ActivityCache) ClearKind(kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, kind)
	return c.persistLocked()
}

// ClearCalendar drops every calendar namespace without touching code kinds.
func (c *ActivityCache) ClearCalendar() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for kind := range c.entries {
		if strings.HasPrefix(kind, CalendarKindPrefix) {
			delete(c.entries, kind)
		}
	}
	return c.persistLocked()
}

// ClearExpired sweeps every namespace and removes entries failing the TTL
// test, leaving fresh entries alone.
func (c *ActivityCache) ClearExpired() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for kind, days := range c.entries {
		for day, entry := range days {
			if now.Sub(entry.CachedAt) > c.ttl {
				delete(days, day)
			}
		}
		if len(days) == 0 {
			delete(c.entries, kind)
		}
	}
	return c.persistLocked()
}

// Stats returns per-kind hit/miss counters plus an aggregate hit rate.
func (c *ActivityCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Stats{Kinds: make(map[string]KindStats)}
	for kind, st := range c.stats {
		out.Kinds[kind] = *st
		out.Hits += st.Hits
		out.Misses += st.Misses
	}
	for _, days := range c.entries {
		out.Entries += len(days)
	}
	if total := out.Hits + out.Misses; total > 0 {
		out.HitRate = float64(out.Hits) / float64(total)
	}
	return out
}

// ResetStats zeroes all counters without touching cached data.
func (c *ActivityCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = make(map[string]*KindStats)
}

// Kinds lists the namespaces currently holding entries, sorted.
func (c *ActivityCache) Kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	kinds := make([]string, 0, len(c.entries))
	for kind := range c.entries {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (c *ActivityCache) kindStats(kind string) *KindStats {
	st, ok := c.stats[kind]
	if !ok {
		st = &KindStats{}
		c.stats[kind] = st
	}
	return st
}

// persistLocked writes the whole store atomically. Caller holds c.mu, so
// overlapping writes from concurrent per-provider Set calls cannot interleave.
func (c *ActivityCache) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(fileFormat{Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
