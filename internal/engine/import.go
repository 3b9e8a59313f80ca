package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lazypower/pacing/internal/importer"
)

// ImportResult summarizes an import.
type ImportResult struct {
	Events      int      `json:"events"`
	Symptoms    int      `json:"symptoms"`
	Reflections int      `json:"reflections"`
	Skipped     []string `json:"skipped,omitempty"`
}

// Import stores every record in b and invalidates from the earliest day
// touched. Records rejected by validation are reported in Skipped.
func (e *Engine) Import(ctx context.Context, b *importer.Batch) (ImportResult, error) {
	res := ImportResult{Skipped: append([]string(nil), b.Skipped...)}
	var earliest time.Time
	touch := func(t time.Time) {
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
	}
	defer func() {
		if !earliest.IsZero() {
			e.invalidateFrom(earliest)
		}
	}()

	for i := range b.Events {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ev := b.Events[i]
		if err := validateEvent(&ev); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("event %q: %v", ev.Title, err))
			continue
		}
		if err := e.DB.CreateEvent(&ev); err != nil {
			return res, fmt.Errorf("import event: %w", err)
		}
		touch(ev.EffectiveDate())
		res.Events++
	}

	for i := range b.Symptoms {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s := b.Symptoms[i]
		if err := validateSymptom(&s); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("symptom %q: %v", s.Name, err))
			continue
		}
		if err := e.DB.CreateSymptom(&s); err != nil {
			return res, fmt.Errorf("import symptom: %w", err)
		}
		touch(s.EffectiveDate())
		res.Symptoms++
	}

	for i := range b.Reflections {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r := b.Reflections[i]
		day, err := e.calendar.ParseDay(r.Day)
		if err != nil || r.Multiplier <= 0 {
			res.Skipped = append(res.Skipped, fmt.Sprintf("reflection %q: invalid", r.Day))
			continue
		}
		if err := e.DB.SetReflection(&r); err != nil {
			return res, fmt.Errorf("import reflection: %w", err)
		}
		touch(day)
		res.Reflections++
	}

	log.Printf("import: %d events, %d symptoms, %d reflections, %d skipped",
		res.Events, res.Symptoms, res.Reflections, len(res.Skipped))
	return res, nil
}
