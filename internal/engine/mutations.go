package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/pacing/internal/store"
)

func validateEvent(ev *store.Event) error {
	if _, err := store.ParseEventKind(string(ev.Kind)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if ev.Load < 0 {
		return fmt.Errorf("%w: load must not be negative", ErrInvalid)
	}
	if ev.RecoveryFactor != nil && *ev.RecoveryFactor <= 0 {
		return fmt.Errorf("%w: recovery factor must be positive", ErrInvalid)
	}
	return nil
}

func validateSymptom(s *store.SymptomEntry) error {
	if s.Name == "" {
		return fmt.Errorf("%w: symptom name is required", ErrInvalid)
	}
	if s.Severity < 1 || s.Severity > 5 {
		return fmt.Errorf("%w: severity must be between 1 and 5", ErrInvalid)
	}
	return nil
}

// AddEvent stores a new event and invalidates its day onward.
func (e *Engine) AddEvent(ctx context.Context, ev *store.Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	if ev.CreatedAt == 0 {
		ev.CreatedAt = e.now().UnixMilli()
	}
	if err := e.DB.CreateEvent(ev); err != nil {
		return err
	}
	e.invalidateFrom(ev.EffectiveDate())
	return nil
}

// UpdateEvent rewrites an event. If the edit moves the event to another
// day, invalidation starts at the earlier of the two.
func (e *Engine) UpdateEvent(ctx context.Context, ev *store.Event) error {
	if err := validateEvent(ev); err != nil {
		return err
	}
	old, err := e.DB.GetEvent(ev.ID)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("update event %s: %w", ev.ID, store.ErrNotFound)
	}
	ev.CreatedAt = old.CreatedAt
	if err := e.DB.UpdateEvent(ev); err != nil {
		return err
	}
	e.invalidateFrom(earlier(old.EffectiveDate(), ev.EffectiveDate()))
	return nil
}

// DeleteEvent removes an event and invalidates its day onward.
func (e *Engine) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	old, err := e.DB.GetEvent(id)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("delete event %s: %w", id, store.ErrNotFound)
	}
	if err := e.DB.DeleteEvent(id); err != nil {
		return err
	}
	e.invalidateFrom(old.EffectiveDate())
	return nil
}

// ListEvents returns stored events for the days from..to inclusive.
func (e *Engine) ListEvents(ctx context.Context, from, to time.Time) ([]store.Event, error) {
	return e.DB.ListEvents(e.calendar.DayStart(from), e.calendar.Next(to))
}

// AddSymptom stores a symptom entry and invalidates its day onward.
func (e *Engine) AddSymptom(ctx context.Context, s *store.SymptomEntry) error {
	if err := validateSymptom(s); err != nil {
		return err
	}
	if s.CreatedAt == 0 {
		s.CreatedAt = e.now().UnixMilli()
	}
	if err := e.DB.CreateSymptom(s); err != nil {
		return err
	}
	e.invalidateFrom(s.EffectiveDate())
	return nil
}

// DeleteSymptom removes a symptom entry and invalidates its day onward.
func (e *Engine) DeleteSymptom(ctx context.Context, id uuid.UUID) error {
	old, err := e.DB.GetSymptom(id)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("delete symptom %s: %w", id, store.ErrNotFound)
	}
	if err := e.DB.DeleteSymptom(id); err != nil {
		return err
	}
	e.invalidateFrom(old.EffectiveDate())
	return nil
}

// SetReflection records how day actually felt. The multiplier scales the
// load carried into the following days.
func (e *Engine) SetReflection(ctx context.Context, day time.Time, multiplier float64, note string) error {
	if multiplier <= 0 {
		return fmt.Errorf("%w: reflection multiplier must be positive", ErrInvalid)
	}
	r := &store.Reflection{Day: e.calendar.Key(day), Multiplier: multiplier, Note: note}
	if err := e.DB.SetReflection(r); err != nil {
		return err
	}
	e.invalidateFrom(day)
	return nil
}

// ClearReflection removes the reflection for day.
func (e *Engine) ClearReflection(ctx context.Context, day time.Time) error {
	if err := e.DB.DeleteReflection(e.calendar.Key(day)); err != nil {
		return err
	}
	e.invalidateFrom(day)
	return nil
}

func earlier(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
