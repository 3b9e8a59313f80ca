package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/pacing/internal/store"
)

func TestParseLines(t *testing.T) {
	content := `{"type":"activity","title":"Groceries","load":12,"at":"2026-06-01T10:00:00Z"}
{"type":"meal","title":"Lunch","load":2,"at":"2026-06-01T12:30:00Z","note":"heavy"}
{"type":"sleep","title":"Bad night","load":3,"recovery_factor":1.4,"at":"2026-06-02T07:00:00Z"}
{"type":"symptom","name":"fatigue","severity":4,"at":"2026-06-02T09:00:00Z"}
{"type":"symptom","name":"energy","severity":2,"positive":true,"at":"2026-06-02T09:05:00Z"}
{"type":"reflection","day":"2026-06-01","multiplier":1.2}
`
	b, err := ParseLines(content)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if len(b.Events) != 3 || len(b.Symptoms) != 2 || len(b.Reflections) != 1 {
		t.Fatalf("got %d events, %d symptoms, %d reflections", len(b.Events), len(b.Symptoms), len(b.Reflections))
	}
	if b.Len() != 6 {
		t.Errorf("Len = %d, want 6", b.Len())
	}
	if len(b.Skipped) != 0 {
		t.Errorf("skipped = %v", b.Skipped)
	}

	groceries := b.Events[0]
	if groceries.Kind != store.KindActivity || groceries.Load != 12 {
		t.Errorf("groceries = %+v", groceries)
	}
	want := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	if !groceries.EffectiveDate().Equal(want) {
		t.Errorf("effective = %v, want %v", groceries.EffectiveDate(), want)
	}
	if b.Events[1].Note != "heavy" {
		t.Errorf("note = %q", b.Events[1].Note)
	}

	// A factor implies a recovery modifier even without the flag.
	if f, ok := b.Events[2].RecoveryModifier(); !ok || f != 1.4 {
		t.Errorf("sleep recovery = (%v, %v), want (1.4, true)", f, ok)
	}
	if !b.Symptoms[1].Positive {
		t.Error("energy should be positive")
	}
	if b.Reflections[0].Day != "2026-06-01" || b.Reflections[0].Multiplier != 1.2 {
		t.Errorf("reflection = %+v", b.Reflections[0])
	}
}

func TestParseSkipsInvalidLines(t *testing.T) {
	content := strings.Join([]string{
		`# exported 2026-06-03`,
		`not json`,
		`{"type":"activity","load":5}`,
		`{"type":"activity","load":-1,"at":"2026-06-01T10:00:00Z"}`,
		`{"type":"symptom","name":"pain","severity":9,"at":"2026-06-01T10:00:00Z"}`,
		`{"type":"reflection","day":"June 1","multiplier":1}`,
		`{"type":"reflection","day":"2026-06-01","multiplier":0}`,
		`{"type":"nap","at":"2026-06-01T10:00:00Z"}`,
		`{"title":"untyped"}`,
		`{"type":"meal","load":1,"at":"2026-06-01T10:00:00Z"}`,
	}, "\n")

	b, err := ParseLines(content)
	if err != nil {
		t.Fatalf("ParseLines: %v", err)
	}
	if b.Len() != 1 {
		t.Errorf("accepted = %d, want 1", b.Len())
	}
	if len(b.Skipped) != 8 {
		t.Errorf("skipped %d lines, want 8: %v", len(b.Skipped), b.Skipped)
	}
	if !strings.HasPrefix(b.Skipped[0], "line 2:") {
		t.Errorf("first skip = %q, want line 2", b.Skipped[0])
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	if err := os.WriteFile(path, []byte(`{"type":"meal","load":1,"at":"2026-06-01T10:00:00Z"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(b.Events) != 1 {
		t.Errorf("events = %d, want 1", len(b.Events))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
