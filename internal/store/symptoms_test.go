package store

import (
	"errors"
	"testing"
	"time"
)

func TestCreateAndListSymptoms(t *testing.T) {
	db := testDB(t)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	fatigue := &SymptomEntry{Name: "fatigue", Severity: 4, CreatedAt: day.Add(8 * time.Hour).UnixMilli()}
	energy := &SymptomEntry{Name: "energy", Severity: 2, Positive: true, CreatedAt: day.Add(20 * time.Hour).UnixMilli()}
	tomorrow := &SymptomEntry{Name: "pain", Severity: 3, CreatedAt: day.Add(26 * time.Hour).UnixMilli()}
	for _, s := range []*SymptomEntry{fatigue, energy, tomorrow} {
		if err := db.CreateSymptom(s); err != nil {
			t.Fatalf("CreateSymptom: %v", err)
		}
	}

	got, err := db.ListSymptoms(day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListSymptoms: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d symptoms, want 2", len(got))
	}
	if got[1].Name != "energy" || !got[1].Positive {
		t.Errorf("second = %+v", got[1])
	}
	// Positive energy of 2 normalises to severity 4.
	if got[1].NormalisedSeverity() != 4 {
		t.Errorf("normalised = %v, want 4", got[1].NormalisedSeverity())
	}
}

func TestDeleteSymptom(t *testing.T) {
	db := testDB(t)
	s := &SymptomEntry{Name: "headache", Severity: 2}
	db.CreateSymptom(s)

	if err := db.DeleteSymptom(s.ID); err != nil {
		t.Fatalf("DeleteSymptom: %v", err)
	}
	if got, _ := db.GetSymptom(s.ID); got != nil {
		t.Error("symptom still present")
	}
	if err := db.DeleteSymptom(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
