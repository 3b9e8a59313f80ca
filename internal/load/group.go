package load

import "time"

// Dated is anything attributed to a day.
type Dated interface {
	EffectiveDate() time.Time
}

// GroupByDay buckets items by the day start of their effective date, using
// the same normalization the cache uses for its keys.
func GroupByDay[T Dated](cal Calendar, items []T) map[time.Time][]T {
	out := make(map[time.Time][]T)
	for _, it := range items {
		day := cal.DayStart(it.EffectiveDate())
		out[day] = append(out[day], it)
	}
	return out
}
