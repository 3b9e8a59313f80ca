package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Reflection is a subjective "how did today feel" override for one day.
// Day is a YYYY-MM-DD key in the user's calendar.
type Reflection struct {
	Day        string
	Multiplier float64
	Note       string
	UpdatedAt  int64
}

// SetReflection inserts or replaces the reflection for a day.
func (db *DB) SetReflection(r *Reflection) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO reflections (day, multiplier, note, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?)
		ON CONFLICT(day) DO UPDATE SET multiplier = excluded.multiplier, note = excluded.note, updated_at = excluded.updated_at
	`, r.Day, r.Multiplier, r.Note, now)
	if err != nil {
		return fmt.Errorf("set reflection: %w", err)
	}
	r.UpdatedAt = now
	return nil
}

// GetReflection returns the reflection for day, or nil if none is set.
func (db *DB) GetReflection(day string) (*Reflection, error) {
	var r Reflection
	var note sql.NullString
	err := db.QueryRow(`SELECT day, multiplier, note, updated_at FROM reflections WHERE day = ?`, day).
		Scan(&r.Day, &r.Multiplier, &note, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reflection: %w", err)
	}
	r.Note = note.String
	return &r, nil
}

// DeleteReflection removes the reflection for day.
func (db *DB) DeleteReflection(day string) error {
	result, err := db.Exec(`DELETE FROM reflections WHERE day = ?`, day)
	if err != nil {
		return fmt.Errorf("delete reflection: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete reflection %s: %w", day, ErrNotFound)
	}
	return nil
}

// ListReflections returns reflections for days in [fromDay, toDay] inclusive.
// YYYY-MM-DD keys sort lexically in date order.
func (db *DB) ListReflections(fromDay, toDay string) ([]Reflection, error) {
	rows, err := db.Query(`
		SELECT day, multiplier, note, updated_at FROM reflections
		WHERE day >= ? AND day <= ? ORDER BY day
	`, fromDay, toDay)
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	defer rows.Close()

	var out []Reflection
	for rows.Next() {
		var r Reflection
		var note sql.NullString
		if err := rows.Scan(&r.Day, &r.Multiplier, &note, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reflection: %w", err)
		}
		r.Note = note.String
		out = append(out, r)
	}
	return out, rows.Err()
}
