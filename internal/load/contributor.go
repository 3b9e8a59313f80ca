package load

import "time"

// Category groups contributors for the per-day breakdown.
type Category string

const (
	CategoryActivity Category = "activity"
	CategoryMeal     Category = "meal"
	CategorySleep    Category = "sleep"
	CategorySymptom  Category = "symptom"
)

// Contributor is any logged event that adds load to the day it is attributed to.
type Contributor interface {
	// Identity is stable for the lifetime of the event and feeds cache hashing.
	Identity() string
	Category() Category
	LoadContribution() float64
	EffectiveDate() time.Time
	// RecoveryModifier reports whether the contributor is a recovery
	// modifier and, if so, the factor applied to the carried-over load.
	// Recovery contributors without an explicit factor report 1.0.
	RecoveryModifier() (factor float64, ok bool)
}

// Symptom is a self-reported symptom entry for a day.
type Symptom interface {
	Identity() string
	// NormalisedSeverity is on the 1-5 scale where higher is worse,
	// regardless of the symptom's polarity.
	NormalisedSeverity() float64
}

// NormaliseSeverity clamps severity to [1,5] and inverts positive-wellbeing
// symptoms so that a high reported value maps to a low severity.
func NormaliseSeverity(severity int, positive bool) float64 {
	if severity < 1 {
		severity = 1
	}
	if severity > 5 {
		severity = 5
	}
	if positive {
		return float64(6 - severity)
	}
	return float64(severity)
}
