// Carried load decays in the calculator (load.Calculator.Calculate); the
// cache only memoizes results. This file owns the cache's lifetime:
//   - Entries are keyed by day start in the engine's calendar
//   - Data edits invalidate the edited day and everything after it
//   - Capacity changes drop the whole cache
//   - Entries older than the prune age are dropped on startup and daily
//     via Engine.StartPruneTimer()
package engine

import (
	"log"
	"time"
)

// DefaultPruneAgeDays is the default age at which cached scores are pruned.
const DefaultPruneAgeDays = 30

// Prune drops cached scores stored more than maxAgeDays ago.
func (e *Engine) Prune(maxAgeDays int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.PruneOlderThan(maxAgeDays)
}

// StartPruneTimer prunes the cache on startup and then daily.
func (e *Engine) StartPruneTimer(maxAgeDays int) {
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultPruneAgeDays
	}
	e.prune(maxAgeDays)

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.prune(maxAgeDays)
			case <-e.stopCh:
				return
			}
		}
	}()
}

func (e *Engine) prune(maxAgeDays int) {
	if removed := e.Prune(maxAgeDays); removed > 0 {
		log.Printf("prune: removed %d cache entries", removed)
	}
}
