package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lazypower/pacing/internal/capacity"
	"github.com/lazypower/pacing/internal/load"
	"github.com/lazypower/pacing/internal/store"
)

// DefaultLookbackDays is how far before a requested range history is read
// so the first requested day starts from a realistic carried load.
const DefaultLookbackDays = 30

// ErrInvalid marks input the engine refuses to store.
var ErrInvalid = errors.New("invalid input")

const (
	settingCapacity    = "capacity"
	settingCalibration = "calibration"
)

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	Location        *time.Location
	LookbackDays    int
	MaxCacheEntries int
	Now             func() time.Time
}

// Engine orchestrates storage, the capacity manager and the score cache.
type Engine struct {
	DB *store.DB

	// mu serializes every access to the cache and the capacity manager,
	// neither of which is safe for concurrent use.
	mu       sync.Mutex
	capacity *capacity.Manager
	calendar load.Calendar
	calc     *load.Calculator
	cache    *load.Cache

	lookback int
	now      func() time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// calibrationState persists an in-progress calibration across restarts.
type calibrationState struct {
	Active  bool      `json:"active"`
	Samples []float64 `json:"samples,omitempty"`
}

// New creates an Engine and restores persisted capacity settings.
func New(db *store.DB, opts Options) (*Engine, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}

	mgr := capacity.NewManager()
	mgr.SetClock(opts.Now)

	var state capacity.State
	ok, err := db.GetSetting(settingCapacity, &state)
	if err != nil {
		return nil, fmt.Errorf("load capacity: %w", err)
	}
	if ok {
		if err := mgr.Restore(state); err != nil {
			log.Printf("engine: ignoring stored capacity: %v", err)
		}
	}

	var cal calibrationState
	if ok, err := db.GetSetting(settingCalibration, &cal); err != nil {
		return nil, fmt.Errorf("load calibration: %w", err)
	} else if ok && cal.Active {
		mgr.StartCalibration()
		for _, s := range cal.Samples {
			mgr.RecordGoodDay(s)
		}
	}

	calendar := load.NewCalendar(opts.Location)
	calc := load.NewCalculator(mgr, calendar)
	return &Engine{
		DB:       db,
		capacity: mgr,
		calendar: calendar,
		calc:     calc,
		cache:    load.NewCache(calc, load.WithMaxEntries(opts.MaxCacheEntries), load.WithClock(opts.Now)),
		lookback: opts.LookbackDays,
		now:      opts.Now,
		stopCh:   make(chan struct{}),
	}, nil
}

// Calendar returns the calendar every day key is derived from.
func (e *Engine) Calendar() load.Calendar {
	return e.calendar
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// LookbackDays returns the history window read before each range.
func (e *Engine) LookbackDays() int {
	return e.lookback
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

// CacheStats returns the score cache counters.
func (e *Engine) CacheStats() load.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Statistics()
}

// ResetCacheStats zeroes the hit and miss counters.
func (e *Engine) ResetCacheStats() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.ResetStatistics()
}

// InvalidateCache drops every cached score and returns how many were held.
func (e *Engine) InvalidateCache() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.cache.Len()
	e.cache.InvalidateAll()
	return n
}

// invalidateFrom drops cached scores from day onward.
func (e *Engine) invalidateFrom(day time.Time) {
	e.mu.Lock()
	removed := e.cache.InvalidateFrom(day)
	e.mu.Unlock()
	if removed > 0 {
		log.Printf("cache: invalidated %d days from %s", removed, e.calendar.Key(day))
	}
}
