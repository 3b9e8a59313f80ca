package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/pacing/internal/load"
)

// EventKind is the type of a logged exertion event.
type EventKind string

const (
	KindActivity EventKind = "activity"
	KindMeal     EventKind = "meal"
	KindSleep    EventKind = "sleep"
)

// ParseEventKind validates an event kind string.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case KindActivity, KindMeal, KindSleep:
		return k, nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Event is a logged activity, meal or sleep. It implements load.Contributor.
type Event struct {
	ID    uuid.UUID
	Kind  EventKind
	Title string
	Load  float64
	// Recovery marks the event as a recovery modifier (e.g. a very poor
	// night). RecoveryFactor is optional; nil means a neutral 1.0.
	Recovery       bool
	RecoveryFactor *float64
	Note           string
	BackdatedAt    *int64
	CreatedAt      int64
	UpdatedAt      int64
}

func (e Event) Identity() string          { return e.ID.String() }
func (e Event) Category() load.Category   { return load.Category(e.Kind) }
func (e Event) LoadContribution() float64 { return e.Load }

// EffectiveDate is the backdated timestamp if set, else the creation time.
func (e Event) EffectiveDate() time.Time {
	if e.BackdatedAt != nil {
		return time.UnixMilli(*e.BackdatedAt)
	}
	return time.UnixMilli(e.CreatedAt)
}

func (e Event) RecoveryModifier() (float64, bool) {
	if !e.Recovery {
		return 0, false
	}
	if e.RecoveryFactor == nil {
		return 1.0, true
	}
	return *e.RecoveryFactor, true
}

const eventColumns = `id, kind, title, load, recovery, recovery_factor, note, backdated_at, created_at, updated_at`

// CreateEvent inserts an event. A zero ID is replaced with a new UUID and a
// zero CreatedAt with the current time.
func (db *DB) CreateEvent(e *Event) error {
	now := time.Now().UnixMilli()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := db.Exec(`
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?)
	`, e.ID.String(), string(e.Kind), e.Title, e.Load, boolInt(e.Recovery), e.RecoveryFactor,
		e.Note, e.BackdatedAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// GetEvent returns an event by ID, or nil if not found.
func (db *DB) GetEvent(id uuid.UUID) (*Event, error) {
	row := db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id.String())
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// UpdateEvent rewrites an existing event's mutable fields.
func (db *DB) UpdateEvent(e *Event) error {
	now := time.Now().UnixMilli()
	result, err := db.Exec(`
		UPDATE events SET kind = ?, title = ?, load = ?, recovery = ?, recovery_factor = ?,
			note = NULLIF(?, ''), backdated_at = ?, updated_at = ?
		WHERE id = ?
	`, string(e.Kind), e.Title, e.Load, boolInt(e.Recovery), e.RecoveryFactor,
		e.Note, e.BackdatedAt, now, e.ID.String())
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("update event %s: %w", e.ID, ErrNotFound)
	}
	e.UpdatedAt = now
	return nil
}

// DeleteEvent removes an event by ID.
func (db *DB) DeleteEvent(id uuid.UUID) error {
	result, err := db.Exec(`DELETE FROM events WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete event %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListEvents returns events whose effective date falls in [from, to),
// ordered by effective date.
func (db *DB) ListEvents(from, to time.Time) ([]Event, error) {
	rows, err := db.Query(`
		SELECT `+eventColumns+` FROM events
		WHERE COALESCE(backdated_at, created_at) >= ? AND COALESCE(backdated_at, created_at) < ?
		ORDER BY COALESCE(backdated_at, created_at)
	`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	var id, kind string
	var recovery int
	var factor sql.NullFloat64
	var note sql.NullString
	var backdated sql.NullInt64
	if err := row.Scan(&id, &kind, &e.Title, &e.Load, &recovery, &factor, &note,
		&backdated, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse event id %q: %w", id, err)
	}
	e.ID = parsed
	e.Kind = EventKind(kind)
	e.Recovery = recovery != 0
	if factor.Valid {
		e.RecoveryFactor = &factor.Float64
	}
	e.Note = note.String
	if backdated.Valid {
		e.BackdatedAt = &backdated.Int64
	}
	return &e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
