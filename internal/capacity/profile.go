package capacity

import (
	"errors"
	"fmt"

	"github.com/lazypower/pacing/internal/load"
)

var (
	ErrUnknownPreset         = errors.New("unknown preset")
	ErrUnknownCapacity       = errors.New("unknown capacity")
	ErrUnknownSensitivity    = errors.New("unknown sensitivity")
	ErrUnknownRecoveryWindow = errors.New("unknown recovery window")
)

// Preset is a named bundle of capacity, sensitivity and recovery window
// defaults tuned for a health condition.
type Preset string

const (
	PresetStandard     Preset = "standard"
	PresetMECFS        Preset = "mecfs"
	PresetFibromyalgia Preset = "fibromyalgia"
	PresetPCOS         Preset = "pcos"
	PresetPTSD         Preset = "ptsd"
	PresetLongCovid    Preset = "long_covid"
	PresetAutoimmune   Preset = "autoimmune"
	PresetCustom       Preset = "custom"
)

// Presets lists every preset in display order.
var Presets = []Preset{
	PresetStandard, PresetMECFS, PresetFibromyalgia, PresetPCOS,
	PresetPTSD, PresetLongCovid, PresetAutoimmune, PresetCustom,
}

// Capacity is the user's overall energy envelope.
type Capacity string

const (
	CapacityLow    Capacity = "low"
	CapacityMedium Capacity = "medium"
	CapacityHigh   Capacity = "high"
)

// Sensitivity controls how strongly symptoms add load.
type Sensitivity string

const (
	SensitivitySensitive Sensitivity = "sensitive"
	SensitivityStandard  Sensitivity = "standard"
	SensitivityResilient Sensitivity = "resilient"
)

// RecoveryWindow is how long exertion typically takes to wear off.
type RecoveryWindow string

const (
	Recovery12h RecoveryWindow = "12h"
	Recovery24h RecoveryWindow = "24h"
	Recovery48h RecoveryWindow = "48h"
	Recovery72h RecoveryWindow = "72h"
)

// Profile is the (capacity, sensitivity, recovery window) triple a preset expands to.
type Profile struct {
	Capacity       Capacity       `json:"capacity"`
	Sensitivity    Sensitivity    `json:"sensitivity"`
	RecoveryWindow RecoveryWindow `json:"recovery_window"`
}

var presetProfiles = map[Preset]Profile{
	PresetStandard:     {CapacityMedium, SensitivityStandard, Recovery24h},
	PresetMECFS:        {CapacityLow, SensitivitySensitive, Recovery72h},
	PresetFibromyalgia: {CapacityLow, SensitivityStandard, Recovery48h},
	PresetPCOS:         {CapacityMedium, SensitivityStandard, Recovery48h},
	PresetPTSD:         {CapacityMedium, SensitivitySensitive, Recovery24h},
	PresetLongCovid:    {CapacityLow, SensitivitySensitive, Recovery48h},
	PresetAutoimmune:   {CapacityMedium, SensitivitySensitive, Recovery48h},
}

// ProfileFor returns the triple for p. ok is false for PresetCustom.
func ProfileFor(p Preset) (Profile, bool) {
	prof, ok := presetProfiles[p]
	return prof, ok
}

var baseThresholds = map[Capacity]load.Thresholds{
	CapacityLow:    {Safe: 20, Caution: 40, High: 60, Critical: 60},
	CapacityMedium: {Safe: 25, Caution: 50, High: 75, Critical: 75},
	CapacityHigh:   {Safe: 30, Caution: 60, High: 80, Critical: 80},
}

var symptomMultipliers = map[Sensitivity]float64{
	SensitivitySensitive: 1.5,
	SensitivityStandard:  1.0,
	SensitivityResilient: 0.7,
}

var decayRates = map[RecoveryWindow]float64{
	Recovery12h: 0.85,
	Recovery24h: 0.70,
	Recovery48h: 0.55,
	Recovery72h: 0.40,
}

// Thresholds returns the unscaled thresholds for c.
func (c Capacity) Thresholds() load.Thresholds {
	return baseThresholds[c]
}

// SymptomMultiplier returns the symptom load multiplier for s.
func (s Sensitivity) SymptomMultiplier() float64 {
	return symptomMultipliers[s]
}

// DecayRate returns the fraction of yesterday's load carried into today.
func (w RecoveryWindow) DecayRate() float64 {
	return decayRates[w]
}

func ParsePreset(s string) (Preset, error) {
	p := Preset(s)
	if _, ok := presetProfiles[p]; ok || p == PresetCustom {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
}

func ParseCapacity(s string) (Capacity, error) {
	c := Capacity(s)
	if _, ok := baseThresholds[c]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCapacity, s)
}

func ParseSensitivity(s string) (Sensitivity, error) {
	v := Sensitivity(s)
	if _, ok := symptomMultipliers[v]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSensitivity, s)
}

func ParseRecoveryWindow(s string) (RecoveryWindow, error) {
	w := RecoveryWindow(s)
	if _, ok := decayRates[w]; ok {
		return w, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRecoveryWindow, s)
}
