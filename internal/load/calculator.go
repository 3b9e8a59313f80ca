package load

import "time"

// Load recurrence:
//   - today's raw load = exertion + recovery contributors' own load + symptom load
//   - carried load     = previous effective load × decay rate × recovery modifier
//   - decayed load     = min(raw + carried, 100)
//   - symptom load     = max(0, (avg severity − 3) × 10) × symptom multiplier
//   - symptom modifier = max(1.2 − avg severity × 0.16, 0.4), then multiplied by
//     every recovery contributor's factor and clamped to [0.2, 2.0]
//   - a day reflection scales the effective load that tomorrow inherits
const (
	neutralSeverity        = 3.0
	symptomLoadPerSeverity = 10.0
	symptomModifierBase    = 1.2
	symptomModifierSlope   = 0.16
	symptomModifierFloor   = 0.4
	minRecoveryModifier    = 0.2
	maxRecoveryModifier    = 2.0
)

// DayInput is everything that determines one day's score.
type DayInput struct {
	Date         time.Time
	Contributors []Contributor
	Symptoms     []Symptom
	PreviousLoad float64
	// Reflection is the optional subjective "how did today feel" multiplier.
	Reflection *float64
	// Config overrides the calculator's configuration source when set.
	Config *Configuration
}

// RangeInput describes a run of consecutive days. Map keys must be day
// starts produced by the same Calendar the calculator uses.
type RangeInput struct {
	Start, End         time.Time
	ContributorsByDate map[time.Time][]Contributor
	SymptomsByDate     map[time.Time][]Symptom
	ReflectionsByDate  map[time.Time]float64
	Config             *Configuration
}

// Calculator computes daily load scores.
type Calculator struct {
	source   ConfigSource
	calendar Calendar
}

// NewCalculator returns a Calculator reading its configuration from source.
// A nil source falls back to DefaultConfiguration.
func NewCalculator(source ConfigSource, cal Calendar) *Calculator {
	if source == nil {
		source = StaticConfig(DefaultConfiguration())
	}
	return &Calculator{source: source, calendar: cal}
}

// Calendar returns the calendar used for day normalization.
func (c *Calculator) Calendar() Calendar {
	return c.calendar
}

// Configuration resolves override against the calculator's source.
func (c *Calculator) Configuration(override *Configuration) Configuration {
	if override != nil {
		return *override
	}
	return c.source.Configuration()
}

// Calculate computes the score for a single day.
func (c *Calculator) Calculate(in DayInput) LoadScore {
	cfg := c.Configuration(in.Config)

	var exertionLoad, recoveryLoad float64
	var recoveryFactors []float64
	for _, ct := range in.Contributors {
		if factor, ok := ct.RecoveryModifier(); ok {
			recoveryLoad += ct.LoadContribution()
			recoveryFactors = append(recoveryFactors, factor)
			continue
		}
		exertionLoad += ct.LoadContribution()
	}

	symptomLoad, modifier := symptomImpact(in.Symptoms, cfg.SymptomMultiplier)
	for _, f := range recoveryFactors {
		modifier *= f
	}
	modifier = clamp(modifier, minRecoveryModifier, maxRecoveryModifier)

	decayedPrevious := in.PreviousLoad * cfg.DecayRate * modifier
	todayRaw := exertionLoad + recoveryLoad + symptomLoad
	total := min(todayRaw+decayedPrevious, MaxLoad)

	score := LoadScore{
		Date:             c.calendar.DayStart(in.Date),
		RawLoad:          min(todayRaw, MaxLoad),
		DecayedLoad:      total,
		EffectiveLoad:    total,
		RiskLevel:        cfg.Thresholds.Risk(total),
		SymptomLoad:      symptomLoad,
		RecoveryModifier: modifier,
	}
	if in.Reflection != nil {
		r := *in.Reflection
		score.Reflection = &r
		score.EffectiveLoad = clamp(total*r, 0, MaxLoad)
	}
	return score
}

// CalculateRange folds Calculate across every day from Start to End
// inclusive, carrying each day's effective load into the next. The first
// day always starts from zero, so callers must begin far enough back.
func (c *Calculator) CalculateRange(r RangeInput) []LoadScore {
	days := c.calendar.Days(r.Start, r.End)
	scores := make([]LoadScore, 0, len(days))
	previous := 0.0
	for _, day := range days {
		score := c.Calculate(r.dayInput(day, previous))
		scores = append(scores, score)
		previous = score.EffectiveLoad
	}
	return scores
}

func (r RangeInput) dayInput(day time.Time, previous float64) DayInput {
	in := DayInput{
		Date:         day,
		Contributors: r.ContributorsByDate[day],
		Symptoms:     r.SymptomsByDate[day],
		PreviousLoad: previous,
		Config:       r.Config,
	}
	if v, ok := r.ReflectionsByDate[day]; ok {
		in.Reflection = &v
	}
	return in
}

// symptomImpact returns the symptom load and the symptom recovery modifier.
func symptomImpact(symptoms []Symptom, multiplier float64) (float64, float64) {
	if len(symptoms) == 0 {
		return 0, 1.0
	}
	var sum float64
	for _, s := range symptoms {
		sum += s.NormalisedSeverity()
	}
	avg := sum / float64(len(symptoms))

	base := max(0, (avg-neutralSeverity)*symptomLoadPerSeverity)
	modifier := max(symptomModifierBase-avg*symptomModifierSlope, symptomModifierFloor)
	return base * multiplier, modifier
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
