package load

import (
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultMaxCacheEntries bounds the number of cached days.
const DefaultMaxCacheEntries = 500

// evictionTarget is the fraction of the maximum kept after an eviction pass.
const evictionTarget = 0.9

// dataKey covers every input that affects a day's score. A stored score is
// only returned when the key recomputed from the caller's inputs is equal.
type dataKey struct {
	contributors  uint64
	symptoms      uint64
	previousLoad  float64
	config        Configuration
	hasReflection bool
	reflection    float64
}

type cacheEntry struct {
	score      LoadScore
	key        dataKey
	timestamp  time.Time
	lastAccess time.Time
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// Cache memoizes daily scores keyed by day start.
//
// Because each day depends on the previous day's effective load, a change
// to any day makes every later entry stale: use InvalidateFrom for data
// edits and InvalidateAll for configuration changes.
//
// Cache is not safe for concurrent use.
type Cache struct {
	calc       *Calculator
	calendar   Calendar
	now        func() time.Time
	maxEntries int

	entries map[time.Time]*cacheEntry
	hits    int
	misses  int
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithMaxEntries sets the size bound. Values below 1 are ignored.
func WithMaxEntries(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache returns an empty cache that computes misses with calc.
func NewCache(calc *Calculator, opts ...CacheOption) *Cache {
	c := &Cache{
		calc:       calc,
		calendar:   calc.Calendar(),
		now:        time.Now,
		maxEntries: DefaultMaxCacheEntries,
		entries:    make(map[time.Time]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached score for in.Date if it was stored with identical
// inputs. A miss is normal control flow, not an error.
func (c *Cache) Get(in DayInput, cfg Configuration) (LoadScore, bool) {
	day := c.calendar.DayStart(in.Date)
	entry, ok := c.entries[day]
	if !ok || entry.key != keyFor(in, cfg) {
		c.misses++
		return LoadScore{}, false
	}
	c.hits++
	entry.lastAccess = c.now()
	return entry.score, true
}

// Set stores score for in.Date, replacing any existing entry, then evicts
// least-recently-used entries if the cache is over its bound.
func (c *Cache) Set(score LoadScore, in DayInput, cfg Configuration) {
	now := c.now()
	c.entries[c.calendar.DayStart(in.Date)] = &cacheEntry{
		score:      score,
		key:        keyFor(in, cfg),
		timestamp:  now,
		lastAccess: now,
	}
	c.evictIfNeeded()
}

// CalculateRange is the cache-aware counterpart of Calculator.CalculateRange.
func (c *Cache) CalculateRange(r RangeInput) []LoadScore {
	cfg := c.calc.Configuration(r.Config)
	r.Config = &cfg

	days := c.calendar.Days(r.Start, r.End)
	scores := make([]LoadScore, 0, len(days))
	previous := 0.0
	for _, day := range days {
		in := r.dayInput(day, previous)
		score, ok := c.Get(in, cfg)
		if !ok {
			score = c.calc.Calculate(in)
			c.Set(score, in, cfg)
		}
		scores = append(scores, score)
		previous = score.EffectiveLoad
	}
	return scores
}

// InvalidateFrom removes the entry for day and every later entry.
func (c *Cache) InvalidateFrom(day time.Time) int {
	from := c.calendar.DayStart(day)
	removed := 0
	for k := range c.entries {
		if !k.Before(from) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Invalidate removes exactly one day. Only safe when later days are known
// not to depend on it.
func (c *Cache) Invalidate(day time.Time) {
	delete(c.entries, c.calendar.DayStart(day))
}

// InvalidateAll clears every entry. Statistics are kept.
func (c *Cache) InvalidateAll() {
	c.entries = make(map[time.Time]*cacheEntry)
}

// PruneOlderThan removes entries stored more than days ago.
func (c *Cache) PruneOlderThan(days int) int {
	cutoff := c.now().Add(-time.Duration(days) * 24 * time.Hour)
	removed := 0
	for k, e := range c.entries {
		if e.timestamp.Before(cutoff) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached days.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Statistics returns entry count and hit/miss counters.
func (c *Cache) Statistics() Stats {
	s := Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// ResetStatistics zeroes the counters without touching cached data.
func (c *Cache) ResetStatistics() {
	c.hits, c.misses = 0, 0
}

// evictIfNeeded drops the least recently used entries down to 90% of the
// bound in one pass rather than one entry per insert.
func (c *Cache) evictIfNeeded() {
	if len(c.entries) <= c.maxEntries {
		return
	}
	target := int(float64(c.maxEntries) * evictionTarget)

	keys := make([]time.Time, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := c.entries[keys[i]], c.entries[keys[j]]
		if !a.lastAccess.Equal(b.lastAccess) {
			return a.lastAccess.Before(b.lastAccess)
		}
		return keys[i].Before(keys[j])
	})
	for _, k := range keys[:len(keys)-target] {
		delete(c.entries, k)
	}
}

func keyFor(in DayInput, cfg Configuration) dataKey {
	k := dataKey{
		contributors: contributorsHash(in.Contributors),
		symptoms:     symptomsHash(in.Symptoms),
		previousLoad: in.PreviousLoad,
		config:       cfg,
	}
	if in.Reflection != nil {
		k.hasReflection = true
		k.reflection = *in.Reflection
	}
	return k
}

// contributorsHash XOR-folds per-contributor digests, so order does not
// matter. The digest includes the load and recovery factor as well as the
// identity, so an edited event never matches its old entry.
func contributorsHash(cs []Contributor) uint64 {
	var h uint64
	for _, ct := range cs {
		d := xxhash.New()
		d.WriteString(ct.Identity())
		d.WriteString(string(ct.Category()))
		writeFloat(d, ct.LoadContribution())
		if factor, ok := ct.RecoveryModifier(); ok {
			d.WriteString("recovery")
			writeFloat(d, factor)
		}
		h ^= d.Sum64()
	}
	return h
}

func symptomsHash(ss []Symptom) uint64 {
	var h uint64
	for _, s := range ss {
		d := xxhash.New()
		d.WriteString(s.Identity())
		writeFloat(d, s.NormalisedSeverity())
		h ^= d.Sum64()
	}
	return h
}
