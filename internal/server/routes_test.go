package server

import (
	"math"
	"net/http"
	"testing"

	"github.com/lazypower/pacing/internal/engine"
	"github.com/lazypower/pacing/internal/load"
)

func TestCreateEventAndTimeline(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "POST", "/api/events", `{"kind":"activity","title":"Groceries","load":40,"at":"2026-06-08T10:00:00Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var created eventJSON
	decode(t, w, &created)
	if created.ID == "" || !created.Backdated || created.Load != 40 {
		t.Errorf("created = %+v", created)
	}

	w = do(t, srv, "GET", "/api/load?from=2026-06-08&to=2026-06-09", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var body struct {
		From string           `json:"from"`
		Days []engine.DayLoad `json:"days"`
	}
	decode(t, w, &body)
	if body.From != "2026-06-08" || len(body.Days) != 2 {
		t.Fatalf("body = %+v", body)
	}
	if body.Days[0].DecayedLoad != 40 || math.Abs(body.Days[1].DecayedLoad-28) > 1e-9 {
		t.Errorf("loads = %v, %v", body.Days[0].DecayedLoad, body.Days[1].DecayedLoad)
	}
	if body.Days[0].RiskLevel != load.RiskCaution {
		t.Errorf("risk = %s, want caution", body.Days[0].RiskLevel)
	}
}

func TestTimelineDefaultsToLastWeek(t *testing.T) {
	srv := testServer(t)
	w := do(t, srv, "GET", "/api/load", "")
	var body struct {
		From string           `json:"from"`
		To   string           `json:"to"`
		Days []engine.DayLoad `json:"days"`
	}
	decode(t, w, &body)
	if body.From != "2026-06-04" || body.To != "2026-06-10" || len(body.Days) != 7 {
		t.Errorf("from %s to %s with %d days", body.From, body.To, len(body.Days))
	}
}

func TestTimelineBadRange(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{
		"/api/load?from=June",
		"/api/load?from=2026-06-09&to=2026-06-01",
		"/api/load?from=2024-01-01&to=2026-06-01",
	} {
		if w := do(t, srv, "GET", path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
	}
}

func TestToday(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "POST", "/api/events", `{"kind":"meal","load":5}`)

	w := do(t, srv, "GET", "/api/load/today", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var day engine.DayLoad
	decode(t, w, &day)
	if day.Day != "2026-06-10" || day.RawLoad != 5 || day.Breakdown.Meal != 100 {
		t.Errorf("today = %+v", day)
	}
}

func TestCreateEventValidation(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		body string
		want int
	}{
		{`not json`, http.StatusBadRequest},
		{`{"kind":"nap","load":1}`, http.StatusBadRequest},
		{`{"kind":"activity","load":-3}`, http.StatusBadRequest},
		{`{"kind":"sleep","load":2,"recovery_factor":1.3}`, http.StatusCreated},
	}
	for _, tt := range tests {
		if w := do(t, srv, "POST", "/api/events", tt.body); w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, w.Code, tt.want)
		}
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	srv := testServer(t)
	w := do(t, srv, "POST", "/api/events", `{"kind":"activity","title":"Walk","load":5}`)
	var created eventJSON
	decode(t, w, &created)

	w = do(t, srv, "PUT", "/api/events/"+created.ID, `{"kind":"activity","title":"Long walk","load":9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body)
	}

	w = do(t, srv, "GET", "/api/events", "")
	var list struct {
		Count  int         `json:"count"`
		Events []eventJSON `json:"events"`
	}
	decode(t, w, &list)
	if list.Count != 1 || list.Events[0].Title != "Long walk" || list.Events[0].Load != 9 {
		t.Errorf("list = %+v", list)
	}

	if w := do(t, srv, "DELETE", "/api/events/"+created.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/events/"+created.ID, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/events/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestSymptoms(t *testing.T) {
	srv := testServer(t)
	w := do(t, srv, "POST", "/api/symptoms", `{"name":"fatigue","severity":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	var day engine.DayLoad
	decode(t, do(t, srv, "GET", "/api/load/today", ""), &day)
	if day.SymptomLoad != 20 {
		t.Errorf("symptom load = %v, want 20", day.SymptomLoad)
	}

	if w := do(t, srv, "POST", "/api/symptoms", `{"name":"pain","severity":0}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad severity status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/symptoms/"+created.ID, ""); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
}

func TestReflections(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "POST", "/api/events", `{"kind":"activity","load":40,"at":"2026-06-09T10:00:00Z"}`)

	w := do(t, srv, "PUT", "/api/reflections/2026-06-09", `{"multiplier":0.5,"note":"fine actually"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var day engine.DayLoad
	decode(t, do(t, srv, "GET", "/api/load/today", ""), &day)
	if math.Abs(day.DecayedLoad-14) > 1e-9 {
		t.Errorf("today = %v, want 14", day.DecayedLoad)
	}

	if w := do(t, srv, "PUT", "/api/reflections/2026-06-09", `{"multiplier":-1}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative multiplier status = %d", w.Code)
	}
	if w := do(t, srv, "PUT", "/api/reflections/yesterday", `{"multiplier":1}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad day status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/reflections/2026-06-09", ""); w.Code != http.StatusNoContent {
		t.Errorf("clear status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/reflections/2026-06-09", ""); w.Code != http.StatusNotFound {
		t.Errorf("second clear status = %d, want 404", w.Code)
	}
}
