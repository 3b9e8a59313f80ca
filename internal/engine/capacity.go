package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lazypower/pacing/internal/capacity"
	"github.com/lazypower/pacing/internal/load"
)

// CapacityInfo is a snapshot of the user's personalization and the
// configuration it produces.
type CapacityInfo struct {
	capacity.State
	Configuration      load.Configuration `json:"configuration"`
	BaselineAdjustment float64            `json:"baseline_adjustment"`
	Calibrating        bool               `json:"calibrating"`
	Samples            []float64          `json:"samples,omitempty"`
}

// Capacity returns the current personalization.
func (e *Engine) Capacity() CapacityInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capacityInfoLocked()
}

func (e *Engine) capacityInfoLocked() CapacityInfo {
	m := e.capacity
	return CapacityInfo{
		State:              m.State(),
		Configuration:      m.Configuration(),
		BaselineAdjustment: m.BaselineAdjustment(),
		Calibrating:        m.Calibrating(),
		Samples:            m.CalibrationSamples(),
	}
}

// UpdateCapacity applies fn to the capacity manager, persists the result
// and drops every cached score. If fn or persistence fails the manager is
// rolled back.
func (e *Engine) UpdateCapacity(fn func(m *capacity.Manager) error) (CapacityInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.capacity
	prev := m.State()
	prevCal := calibrationState{Active: m.Calibrating(), Samples: m.CalibrationSamples()}
	rollback := func() {
		if err := m.Restore(prev); err != nil {
			log.Printf("capacity: rollback: %v", err)
		}
		m.CancelCalibration()
		if prevCal.Active {
			m.StartCalibration()
			for _, s := range prevCal.Samples {
				m.RecordGoodDay(s)
			}
		}
	}

	if err := fn(m); err != nil {
		rollback()
		return CapacityInfo{}, err
	}
	if err := e.DB.PutSetting(settingCapacity, m.State()); err != nil {
		rollback()
		return CapacityInfo{}, fmt.Errorf("save capacity: %w", err)
	}
	cal := calibrationState{Active: m.Calibrating(), Samples: m.CalibrationSamples()}
	if err := e.DB.PutSetting(settingCalibration, cal); err != nil {
		rollback()
		return CapacityInfo{}, fmt.Errorf("save calibration: %w", err)
	}

	e.cache.InvalidateAll()
	cfg := m.Configuration()
	log.Printf("capacity: preset=%s config=%016x", m.Preset(), cfg.Hash())
	return e.capacityInfoLocked(), nil
}

// StartCalibration begins collecting good-day samples.
func (e *Engine) StartCalibration(ctx context.Context) (CapacityInfo, error) {
	return e.UpdateCapacity(func(m *capacity.Manager) error {
		m.StartCalibration()
		return nil
	})
}

// RecordGoodDay samples day's total load into the running calibration.
// completed is true when this sample established a new baseline.
func (e *Engine) RecordGoodDay(ctx context.Context, day time.Time) (info CapacityInfo, completed bool, err error) {
	score, err := e.Day(ctx, day)
	if err != nil {
		return CapacityInfo{}, false, err
	}
	info, err = e.UpdateCapacity(func(m *capacity.Manager) error {
		if !m.Calibrating() {
			return fmt.Errorf("%w: calibration has not been started", ErrInvalid)
		}
		completed = m.RecordGoodDay(score.DecayedLoad)
		return nil
	})
	if err != nil {
		return CapacityInfo{}, false, err
	}
	if completed {
		log.Printf("capacity: baseline established at %.1f", info.Baseline.AverageGoodDayLoad)
	}
	return info, completed, nil
}

// CancelCalibration discards collected samples.
func (e *Engine) CancelCalibration(ctx context.Context) (CapacityInfo, error) {
	return e.UpdateCapacity(func(m *capacity.Manager) error {
		m.CancelCalibration()
		return nil
	})
}

// ResetBaseline clears the calibrated baseline.
func (e *Engine) ResetBaseline(ctx context.Context) (CapacityInfo, error) {
	return e.UpdateCapacity(func(m *capacity.Manager) error {
		m.ResetBaseline()
		return nil
	})
}

// CapacityUpdate is a partial change to the personalization. A preset is
// applied first so individual fields can then refine it.
type CapacityUpdate struct {
	Preset         string `json:"preset,omitempty"`
	Capacity       string `json:"capacity,omitempty"`
	Sensitivity    string `json:"sensitivity,omitempty"`
	RecoveryWindow string `json:"recovery_window,omitempty"`
}

// Apply validates and applies u to m. Errors wrap ErrInvalid.
func (u CapacityUpdate) Apply(m *capacity.Manager) error {
	if u.Preset != "" {
		p, err := capacity.ParsePreset(u.Preset)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		m.SelectPreset(p)
	}
	if u.Capacity != "" {
		c, err := capacity.ParseCapacity(u.Capacity)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		m.SetCapacity(c)
	}
	if u.Sensitivity != "" {
		s, err := capacity.ParseSensitivity(u.Sensitivity)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		m.SetSensitivity(s)
	}
	if u.RecoveryWindow != "" {
		w, err := capacity.ParseRecoveryWindow(u.RecoveryWindow)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		m.SetRecoveryWindow(w)
	}
	return nil
}
