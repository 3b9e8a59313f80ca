package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lazypower/pacing/internal/store"
)

// Record is one line of a JSONL history export.
//
//	{"type":"activity","title":"Groceries","load":12,"at":"2026-06-01T10:00:00Z"}
//	{"type":"sleep","title":"Bad night","load":3,"recovery":true,"recovery_factor":1.4,"at":"..."}
//	{"type":"symptom","name":"fatigue","severity":4,"at":"..."}
//	{"type":"reflection","day":"2026-06-01","multiplier":1.2}
type Record struct {
	Type string    `json:"type"` // "activity", "meal", "sleep", "symptom", "reflection"
	At   time.Time `json:"at"`
	Note string    `json:"note,omitempty"`

	Title          string   `json:"title,omitempty"`
	Load           float64  `json:"load,omitempty"`
	Recovery       bool     `json:"recovery,omitempty"`
	RecoveryFactor *float64 `json:"recovery_factor,omitempty"`

	Name     string `json:"name,omitempty"`
	Severity int    `json:"severity,omitempty"`
	Positive bool   `json:"positive,omitempty"`

	Day        string  `json:"day,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// Batch is the validated content of an import.
type Batch struct {
	Events      []store.Event
	Symptoms    []store.SymptomEntry
	Reflections []store.Reflection
	// Skipped holds one message per rejected line.
	Skipped []string
}

// Len is the number of accepted records.
func (b *Batch) Len() int {
	return len(b.Events) + len(b.Symptoms) + len(b.Reflections)
}

// ParseFile reads a JSONL history file.
func ParseFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseLines parses JSONL content from a string.
func ParseLines(content string) (*Batch, error) {
	return Parse(strings.NewReader(content))
}

// Parse reads JSONL records from r. Malformed or invalid lines are recorded
// in Batch.Skipped rather than failing the whole import.
func Parse(r io.Reader) (*Batch, error) {
	b := &Batch{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			b.Skipped = append(b.Skipped, fmt.Sprintf("line %d: %v", n, err))
			continue
		}
		if err := b.add(rec); err != nil {
			b.Skipped = append(b.Skipped, fmt.Sprintf("line %d: %v", n, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan import: %w", err)
	}
	return b, nil
}

func (b *Batch) add(rec Record) error {
	switch rec.Type {
	case "activity", "meal", "sleep":
		if rec.At.IsZero() {
			return fmt.Errorf("%s: missing at", rec.Type)
		}
		if rec.Load < 0 {
			return fmt.Errorf("%s: negative load %v", rec.Type, rec.Load)
		}
		if rec.RecoveryFactor != nil && *rec.RecoveryFactor <= 0 {
			return fmt.Errorf("%s: recovery_factor must be positive", rec.Type)
		}
		at := rec.At.UnixMilli()
		b.Events = append(b.Events, store.Event{
			Kind:           store.EventKind(rec.Type),
			Title:          rec.Title,
			Load:           rec.Load,
			Recovery:       rec.Recovery || rec.RecoveryFactor != nil,
			RecoveryFactor: rec.RecoveryFactor,
			Note:           rec.Note,
			CreatedAt:      at,
		})
	case "symptom":
		if rec.At.IsZero() {
			return fmt.Errorf("symptom: missing at")
		}
		if rec.Name == "" {
			return fmt.Errorf("symptom: missing name")
		}
		if rec.Severity < 1 || rec.Severity > 5 {
			return fmt.Errorf("symptom %s: severity %d out of range 1-5", rec.Name, rec.Severity)
		}
		b.Symptoms = append(b.Symptoms, store.SymptomEntry{
			Name:      rec.Name,
			Severity:  rec.Severity,
			Positive:  rec.Positive,
			Note:      rec.Note,
			CreatedAt: rec.At.UnixMilli(),
		})
	case "reflection":
		if _, err := time.Parse("2006-01-02", rec.Day); err != nil {
			return fmt.Errorf("reflection: bad day %q", rec.Day)
		}
		if rec.Multiplier <= 0 {
			return fmt.Errorf("reflection %s: multiplier must be positive", rec.Day)
		}
		b.Reflections = append(b.Reflections, store.Reflection{
			Day:        rec.Day,
			Multiplier: rec.Multiplier,
			Note:       rec.Note,
		})
	case "":
		return fmt.Errorf("missing type")
	default:
		return fmt.Errorf("unknown type %q", rec.Type)
	}
	return nil
}
