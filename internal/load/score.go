package load

import (
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
)

// MaxLoad is the ceiling for every load value.
const MaxLoad = 100.0

// RiskLevel summarizes a day's decayed load against personalized thresholds.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskCaution  RiskLevel = "caution"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Thresholds are ascending cut points between risk bands.
// Critical currently equals High, so critical means "at or above high".
type Thresholds struct {
	Safe     float64 `json:"safe"`
	Caution  float64 `json:"caution"`
	High     float64 `json:"high"`
	Critical float64 `json:"critical"`
}

// Scaled returns the thresholds multiplied by factor.
func (t Thresholds) Scaled(factor float64) Thresholds {
	return Thresholds{
		Safe:     t.Safe * factor,
		Caution:  t.Caution * factor,
		High:     t.High * factor,
		Critical: t.Critical * factor,
	}
}

// Risk classifies total using strict less-than comparisons, so a value equal
// to a boundary falls into the band above it.
func (t Thresholds) Risk(total float64) RiskLevel {
	switch {
	case total < t.Safe:
		return RiskSafe
	case total < t.Caution:
		return RiskCaution
	case total < t.High:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Configuration is the full set of parameters the calculator needs.
// It is a comparable value and is used directly in cache keys.
type Configuration struct {
	Thresholds        Thresholds `json:"thresholds"`
	SymptomMultiplier float64    `json:"symptom_multiplier"`
	DecayRate         float64    `json:"decay_rate"`
}

// DefaultConfiguration matches medium capacity, standard sensitivity and a
// 24 hour recovery window.
func DefaultConfiguration() Configuration {
	return Configuration{
		Thresholds:        Thresholds{Safe: 25, Caution: 50, High: 75, Critical: 75},
		SymptomMultiplier: 1.0,
		DecayRate:         0.70,
	}
}

// Hash returns a 64-bit digest of the configuration.
func (c Configuration) Hash() uint64 {
	d := xxhash.New()
	for _, v := range []float64{
		c.Thresholds.Safe, c.Thresholds.Caution, c.Thresholds.High, c.Thresholds.Critical,
		c.SymptomMultiplier, c.DecayRate,
	} {
		writeFloat(d, v)
	}
	return d.Sum64()
}

// ConfigSource supplies the active configuration.
type ConfigSource interface {
	Configuration() Configuration
}

// StaticConfig is a ConfigSource that always returns the same configuration.
type StaticConfig Configuration

// Configuration implements ConfigSource.
func (s StaticConfig) Configuration() Configuration {
	return Configuration(s)
}

// LoadScore is the immutable result for one calendar day.
type LoadScore struct {
	Date time.Time `json:"date"`
	// RawLoad is today's load before yesterday's carry-over, capped at MaxLoad.
	RawLoad float64 `json:"raw_load"`
	// DecayedLoad is RawLoad plus the decayed previous load, capped at MaxLoad.
	DecayedLoad float64 `json:"decayed_load"`
	// EffectiveLoad is carried into tomorrow's calculation.
	EffectiveLoad float64   `json:"effective_load"`
	RiskLevel     RiskLevel `json:"risk_level"`

	SymptomLoad      float64  `json:"symptom_load"`
	RecoveryModifier float64  `json:"recovery_modifier"`
	Reflection       *float64 `json:"reflection,omitempty"`
}

func writeFloat(w io.Writer, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	w.Write(buf[:])
}
