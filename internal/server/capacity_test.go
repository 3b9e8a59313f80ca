package server

import (
	"net/http"
	"testing"

	"github.com/lazypower/pacing/internal/capacity"
	"github.com/lazypower/pacing/internal/engine"
	"github.com/lazypower/pacing/internal/load"
)

func TestCapacityRoundTrip(t *testing.T) {
	srv := testServer(t)

	var info engine.CapacityInfo
	decode(t, do(t, srv, "GET", "/api/capacity", ""), &info)
	if info.Preset != capacity.PresetStandard || info.Configuration != load.DefaultConfiguration() {
		t.Errorf("default = %+v", info)
	}

	w := do(t, srv, "PUT", "/api/capacity", `{"preset":"mecfs"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	decode(t, w, &info)
	if info.Preset != capacity.PresetMECFS || info.RecoveryWindow != capacity.Recovery72h {
		t.Errorf("mecfs = %+v", info.State)
	}
	if info.Configuration.Thresholds.Safe != 20 {
		t.Errorf("safe threshold = %v, want 20", info.Configuration.Thresholds.Safe)
	}

	if w := do(t, srv, "PUT", "/api/capacity", `{"sensitivity":"numb"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad sensitivity status = %d", w.Code)
	}
	decode(t, do(t, srv, "GET", "/api/capacity", ""), &info)
	if info.Preset != capacity.PresetMECFS {
		t.Errorf("failed update changed preset to %s", info.Preset)
	}
}

func TestCalibrationRoutes(t *testing.T) {
	srv := testServer(t)

	if w := do(t, srv, "POST", "/api/calibration/good-day", ""); w.Code != http.StatusBadRequest {
		t.Errorf("good-day before start status = %d, want 400", w.Code)
	}

	if w := do(t, srv, "POST", "/api/calibration/start", ""); w.Code != http.StatusOK {
		t.Fatalf("start status = %d", w.Code)
	}
	var res struct {
		Completed bool                `json:"completed"`
		Capacity  engine.CapacityInfo `json:"capacity"`
	}
	for i, day := range []string{"", `{"day":"2026-06-08"}`, `{"day":"2026-06-09"}`} {
		w := do(t, srv, "POST", "/api/calibration/good-day", day)
		if w.Code != http.StatusOK {
			t.Fatalf("good-day %d status = %d, body = %s", i, w.Code, w.Body)
		}
		decode(t, w, &res)
	}
	if !res.Completed || res.Capacity.Baseline == nil || res.Capacity.Baseline.SampleCount != 3 {
		t.Errorf("result = %+v", res)
	}

	var info engine.CapacityInfo
	decode(t, do(t, srv, "DELETE", "/api/baseline", ""), &info)
	if info.Baseline != nil {
		t.Errorf("baseline after reset = %+v", info.Baseline)
	}

	do(t, srv, "POST", "/api/calibration/start", "")
	decode(t, do(t, srv, "POST", "/api/calibration/cancel", ""), &info)
	if info.Calibrating {
		t.Error("still calibrating after cancel")
	}
}

func TestCacheRoutes(t *testing.T) {
	srv := testServer(t)
	do(t, srv, "GET", "/api/load/today", "")
	do(t, srv, "GET", "/api/load/today", "")

	var stats load.Stats
	decode(t, do(t, srv, "GET", "/api/cache", ""), &stats)
	if stats.Entries != 31 || stats.Hits != 31 || stats.Misses != 31 {
		t.Errorf("stats = %+v", stats)
	}

	var removed map[string]int
	decode(t, do(t, srv, "DELETE", "/api/cache", ""), &removed)
	if removed["removed"] != 31 {
		t.Errorf("removed = %v", removed)
	}

	decode(t, do(t, srv, "DELETE", "/api/cache/stats", ""), &stats)
	if stats.Hits != 0 || stats.Misses != 0 || stats.Entries != 0 {
		t.Errorf("after reset = %+v", stats)
	}
}

func TestImportRoute(t *testing.T) {
	srv := testServer(t)
	body := `{"type":"activity","title":"move","load":30,"at":"2026-06-10T08:00:00Z"}
{"type":"symptom","name":"fatigue","severity":4,"at":"2026-06-10T09:00:00Z"}
garbage`
	w := do(t, srv, "POST", "/api/import", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var res engine.ImportResult
	decode(t, w, &res)
	if res.Events != 1 || res.Symptoms != 1 || len(res.Skipped) != 1 {
		t.Errorf("result = %+v", res)
	}

	var day engine.DayLoad
	decode(t, do(t, srv, "GET", "/api/load/today", ""), &day)
	if day.RawLoad != 40 {
		t.Errorf("raw = %v, want 40", day.RawLoad)
	}
}
