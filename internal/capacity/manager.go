package capacity

import (
	"fmt"
	"time"

	"github.com/lazypower/pacing/internal/load"
)

const (
	// CalibrationSamples is how many good days complete a calibration.
	CalibrationSamples = 3
	// referenceGoodDayLoad is the good-day load the base thresholds assume.
	referenceGoodDayLoad = 30.0
	minBaselineAdjustment = 0.8
	maxBaselineAdjustment = 1.2
)

// Baseline is a calibrated "typical good day" load.
type Baseline struct {
	EstablishedDate    time.Time `json:"established_date"`
	AverageGoodDayLoad float64   `json:"average_good_day_load"`
	SampleCount        int       `json:"sample_count"`
}

// IsCalibrated reports whether enough samples back the baseline.
func (b Baseline) IsCalibrated() bool {
	return b.SampleCount >= CalibrationSamples
}

// State is the persisted form of a Manager.
type State struct {
	Preset         Preset         `json:"preset"`
	Capacity       Capacity       `json:"capacity"`
	Sensitivity    Sensitivity    `json:"sensitivity"`
	RecoveryWindow RecoveryWindow `json:"recovery_window"`
	Baseline       *Baseline      `json:"baseline,omitempty"`
}

// Manager holds the user's personalization and derives the active
// load.Configuration. It implements load.ConfigSource.
//
// Manager is not safe for concurrent use.
type Manager struct {
	preset  Preset
	profile Profile

	baseline *Baseline

	// applyingPreset suppresses drift detection while a preset writes
	// its three fields.
	applyingPreset bool

	calibrating bool
	samples     []float64

	now func() time.Time
}

// NewManager returns a Manager on the standard preset.
func NewManager() *Manager {
	m := &Manager{now: time.Now}
	m.SelectPreset(PresetStandard)
	return m
}

// SetClock overrides the time source used to stamp baselines.
func (m *Manager) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

func (m *Manager) Preset() Preset                 { return m.preset }
func (m *Manager) Capacity() Capacity             { return m.profile.Capacity }
func (m *Manager) Sensitivity() Sensitivity       { return m.profile.Sensitivity }
func (m *Manager) RecoveryWindow() RecoveryWindow { return m.profile.RecoveryWindow }
func (m *Manager) Profile() Profile               { return m.profile }

// Baseline returns a copy of the baseline, or nil if none is set.
func (m *Manager) Baseline() *Baseline {
	if m.baseline == nil {
		return nil
	}
	b := *m.baseline
	return &b
}

// SelectPreset switches to p. Non-custom presets overwrite capacity,
// sensitivity and recovery window with the preset's values.
func (m *Manager) SelectPreset(p Preset) {
	m.preset = p
	prof, ok := ProfileFor(p)
	if !ok {
		return
	}
	m.applyingPreset = true
	m.SetCapacity(prof.Capacity)
	m.SetSensitivity(prof.Sensitivity)
	m.SetRecoveryWindow(prof.RecoveryWindow)
	m.applyingPreset = false
}

func (m *Manager) SetCapacity(c Capacity) {
	m.profile.Capacity = c
	m.checkDrift()
}

func (m *Manager) SetSensitivity(s Sensitivity) {
	m.profile.Sensitivity = s
	m.checkDrift()
}

func (m *Manager) SetRecoveryWindow(w RecoveryWindow) {
	m.profile.RecoveryWindow = w
	m.checkDrift()
}

// checkDrift moves the manager to PresetCustom once a manual change leaves
// the triple different from the active preset's.
func (m *Manager) checkDrift() {
	if m.applyingPreset || m.preset == PresetCustom {
		return
	}
	if prof, ok := ProfileFor(m.preset); ok && prof != m.profile {
		m.preset = PresetCustom
	}
}

// BaselineAdjustment scales thresholds to the calibrated good-day load,
// clamped to [0.8, 1.2]. It is 1.0 without a calibrated baseline.
func (m *Manager) BaselineAdjustment() float64 {
	if m.baseline == nil || !m.baseline.IsCalibrated() {
		return 1.0
	}
	adj := m.baseline.AverageGoodDayLoad / referenceGoodDayLoad
	return min(max(adj, minBaselineAdjustment), maxBaselineAdjustment)
}

// Thresholds returns the capacity thresholds scaled by the baseline.
func (m *Manager) Thresholds() load.Thresholds {
	return m.profile.Capacity.Thresholds().Scaled(m.BaselineAdjustment())
}

func (m *Manager) SymptomMultiplier() float64 { return m.profile.Sensitivity.SymptomMultiplier() }
func (m *Manager) DecayRate() float64         { return m.profile.RecoveryWindow.DecayRate() }

// Configuration implements load.ConfigSource.
func (m *Manager) Configuration() load.Configuration {
	return load.Configuration{
		Thresholds:        m.Thresholds(),
		SymptomMultiplier: m.SymptomMultiplier(),
		DecayRate:         m.DecayRate(),
	}
}

// StartCalibration begins collecting good-day samples, discarding any
// previous partial run.
func (m *Manager) StartCalibration() {
	m.calibrating = true
	m.samples = nil
}

// RecordGoodDay adds a sample while calibrating. It reports true when the
// sample completed calibration and a new baseline was set.
func (m *Manager) RecordGoodDay(dayLoad float64) bool {
	if !m.calibrating {
		return false
	}
	m.samples = append(m.samples, dayLoad)
	if len(m.samples) < CalibrationSamples {
		return false
	}

	var sum float64
	for _, s := range m.samples {
		sum += s
	}
	m.baseline = &Baseline{
		EstablishedDate:    m.now(),
		AverageGoodDayLoad: sum / float64(len(m.samples)),
		SampleCount:        len(m.samples),
	}
	m.calibrating = false
	m.samples = nil
	return true
}

// CancelCalibration discards collected samples.
func (m *Manager) CancelCalibration() {
	m.calibrating = false
	m.samples = nil
}

// ResetBaseline clears the calibrated baseline.
func (m *Manager) ResetBaseline() {
	m.baseline = nil
}

func (m *Manager) Calibrating() bool { return m.calibrating }

// CalibrationSamples returns a copy of the samples collected so far.
func (m *Manager) CalibrationSamples() []float64 {
	return append([]float64(nil), m.samples...)
}

// State snapshots the persisted fields.
func (m *Manager) State() State {
	return State{
		Preset:         m.preset,
		Capacity:       m.profile.Capacity,
		Sensitivity:    m.profile.Sensitivity,
		RecoveryWindow: m.profile.RecoveryWindow,
		Baseline:       m.Baseline(),
	}
}

// Restore loads a persisted state. The triple is restored as stored, so a
// preset that no longer matches its fields is treated as custom.
func (m *Manager) Restore(s State) error {
	if _, err := ParsePreset(string(s.Preset)); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if _, err := ParseCapacity(string(s.Capacity)); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if _, err := ParseSensitivity(string(s.Sensitivity)); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if _, err := ParseRecoveryWindow(string(s.RecoveryWindow)); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	m.preset = s.Preset
	m.profile = Profile{Capacity: s.Capacity, Sensitivity: s.Sensitivity, RecoveryWindow: s.RecoveryWindow}
	m.checkDrift()
	if s.Baseline != nil {
		b := *s.Baseline
		m.baseline = &b
	} else {
		m.baseline = nil
	}
	return nil
}
