package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "events: load contributors (activity, meal, sleep)",
		SQL: `
CREATE TABLE events (
    id                TEXT PRIMARY KEY,
    kind              TEXT NOT NULL CHECK (kind IN ('activity', 'meal', 'sleep')),
    title             TEXT NOT NULL DEFAULT '',
    load              REAL NOT NULL CHECK (load >= 0),

    -- Recovery modifiers slow or speed up next-day decay
    recovery          INTEGER NOT NULL DEFAULT 0,
    recovery_factor   REAL,

    note              TEXT,
    backdated_at      INTEGER,
    created_at        INTEGER NOT NULL,
    updated_at        INTEGER NOT NULL
);

CREATE INDEX idx_events_effective ON events(COALESCE(backdated_at, created_at));
CREATE INDEX idx_events_kind      ON events(kind);
`,
	},
	{
		Version:     2,
		Description: "symptoms: self-reported severity entries",
		SQL: `
CREATE TABLE symptoms (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    severity       INTEGER NOT NULL CHECK (severity BETWEEN 1 AND 5),
    positive       INTEGER NOT NULL DEFAULT 0,
    note           TEXT,
    backdated_at   INTEGER,
    created_at     INTEGER NOT NULL
);

CREATE INDEX idx_symptoms_effective ON symptoms(COALESCE(backdated_at, created_at));
`,
	},
	{
		Version:     3,
		Description: "reflections: per-day subjective load multiplier",
		SQL: `
CREATE TABLE reflections (
    day          TEXT PRIMARY KEY,
    multiplier   REAL NOT NULL CHECK (multiplier > 0),
    note         TEXT,
    updated_at   INTEGER NOT NULL
);
`,
	},
	{
		Version:     4,
		Description: "settings: key/value personalization state",
		SQL: `
CREATE TABLE settings (
    key          TEXT PRIMARY KEY,
    value        TEXT NOT NULL,
    updated_at   INTEGER NOT NULL
);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
