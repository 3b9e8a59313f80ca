package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lazypower/pacing/internal/load"
	"github.com/lazypower/pacing/internal/store"
)

// DayLoad is one day of the timeline: its score plus the share of today's
// raw load each category contributed.
type DayLoad struct {
	load.LoadScore
	Day       string             `json:"day"`
	Breakdown load.LoadBreakdown `json:"breakdown"`
}

// GroupContributors buckets events by the day of their effective date.
func GroupContributors(cal load.Calendar, events []store.Event) map[time.Time][]load.Contributor {
	out := make(map[time.Time][]load.Contributor)
	for day, evs := range load.GroupByDay(cal, events) {
		cs := make([]load.Contributor, len(evs))
		for i := range evs {
			cs[i] = evs[i]
		}
		out[day] = cs
	}
	return out
}

// GroupSymptoms buckets symptom entries by the day of their effective date.
func GroupSymptoms(cal load.Calendar, entries []store.SymptomEntry) map[time.Time][]load.Symptom {
	out := make(map[time.Time][]load.Symptom)
	for day, ss := range load.GroupByDay(cal, entries) {
		syms := make([]load.Symptom, len(ss))
		for i := range ss {
			syms[i] = ss[i]
		}
		out[day] = syms
	}
	return out
}

// Timeline returns one DayLoad per day from from to to inclusive.
// History is read from LookbackDays before from so the first returned day
// inherits a realistic carried load.
func (e *Engine) Timeline(ctx context.Context, from, to time.Time) ([]DayLoad, error) {
	from, to = e.calendar.DayStart(from), e.calendar.DayStart(to)
	if from.After(to) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := e.calendar.AddDays(from, -e.lookback)
	end := e.calendar.Next(to)

	events, err := e.DB.ListEvents(start, end)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	symptoms, err := e.DB.ListSymptoms(start, end)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	reflections, err := e.DB.ListReflections(e.calendar.Key(start), e.calendar.Key(to))
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}

	contributors := GroupContributors(e.calendar, events)
	in := load.RangeInput{
		Start:              start,
		End:                to,
		ContributorsByDate: contributors,
		SymptomsByDate:     GroupSymptoms(e.calendar, symptoms),
		ReflectionsByDate:  make(map[time.Time]float64, len(reflections)),
	}
	for _, r := range reflections {
		day, err := e.calendar.ParseDay(r.Day)
		if err != nil {
			return nil, fmt.Errorf("timeline: %w", err)
		}
		in.ReflectionsByDate[e.calendar.DayStart(day)] = r.Multiplier
	}

	e.mu.Lock()
	scores := e.cache.CalculateRange(in)
	e.mu.Unlock()

	out := make([]DayLoad, 0, len(scores))
	for _, s := range scores {
		if s.Date.Before(from) {
			continue
		}
		out = append(out, DayLoad{
			LoadScore: s,
			Day:       e.calendar.Key(s.Date),
			Breakdown: load.Breakdown(contributors[s.Date], s.SymptomLoad),
		})
	}
	return out, nil
}

// Today returns the score for the current day.
func (e *Engine) Today(ctx context.Context) (*DayLoad, error) {
	return e.Day(ctx, e.now())
}

// Day returns the score for the day containing t.
func (e *Engine) Day(ctx context.Context, t time.Time) (*DayLoad, error) {
	days, err := e.Timeline(ctx, t, t)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no score for %s", e.calendar.Key(t))
	}
	return &days[0], nil
}
