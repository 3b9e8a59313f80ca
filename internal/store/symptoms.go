package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/pacing/internal/load"
)

// SymptomEntry is a self-reported symptom. It implements load.Symptom.
type SymptomEntry struct {
	ID       uuid.UUID
	Name     string
	Severity int // 1-5
	// Positive marks wellbeing measures (energy, mood) where a higher
	// value is better.
	Positive    bool
	Note        string
	BackdatedAt *int64
	CreatedAt   int64
}

func (s SymptomEntry) Identity() string { return s.ID.String() }

func (s SymptomEntry) NormalisedSeverity() float64 {
	return load.NormaliseSeverity(s.Severity, s.Positive)
}

func (s SymptomEntry) EffectiveDate() time.Time {
	if s.BackdatedAt != nil {
		return time.UnixMilli(*s.BackdatedAt)
	}
	return time.UnixMilli(s.CreatedAt)
}

const symptomColumns = `id, name, severity, positive, note, backdated_at, created_at`

// CreateSymptom inserts a symptom entry. Severity must already be in [1,5].
func (db *DB) CreateSymptom(s *SymptomEntry) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().UnixMilli()
	}
	_, err := db.Exec(`
		INSERT INTO symptoms (`+symptomColumns+`)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?)
	`, s.ID.String(), s.Name, s.Severity, boolInt(s.Positive), s.Note, s.BackdatedAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create symptom: %w", err)
	}
	return nil
}

// GetSymptom returns a symptom by ID, or nil if not found.
func (db *DB) GetSymptom(id uuid.UUID) (*SymptomEntry, error) {
	row := db.QueryRow(`SELECT `+symptomColumns+` FROM symptoms WHERE id = ?`, id.String())
	s, err := scanSymptom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get symptom: %w", err)
	}
	return s, nil
}

// DeleteSymptom removes a symptom entry by ID.
func (db *DB) DeleteSymptom(id uuid.UUID) error {
	result, err := db.Exec(`DELETE FROM symptoms WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete symptom: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete symptom %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListSymptoms returns symptoms whose effective date falls in [from, to).
func (db *DB) ListSymptoms(from, to time.Time) ([]SymptomEntry, error) {
	rows, err := db.Query(`
		SELECT `+symptomColumns+` FROM symptoms
		WHERE COALESCE(backdated_at, created_at) >= ? AND COALESCE(backdated_at, created_at) < ?
		ORDER BY COALESCE(backdated_at, created_at)
	`, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list symptoms: %w", err)
	}
	defer rows.Close()

	var out []SymptomEntry
	for rows.Next() {
		s, err := scanSymptom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan symptom: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSymptom(row rowScanner) (*SymptomEntry, error) {
	var s SymptomEntry
	var id string
	var positive int
	var note sql.NullString
	var backdated sql.NullInt64
	if err := row.Scan(&id, &s.Name, &s.Severity, &positive, &note, &backdated, &s.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse symptom id %q: %w", id, err)
	}
	s.ID = parsed
	s.Positive = positive != 0
	s.Note = note.String
	if backdated.Valid {
		s.BackdatedAt = &backdated.Int64
	}
	return &s, nil
}
