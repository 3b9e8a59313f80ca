package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lazypower/pacing/internal/store"
)

const (
	defaultTimelineDays = 7
	maxRangeDays        = 366
)

type eventJSON struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title,omitempty"`
	Load           float64   `json:"load"`
	Recovery       bool      `json:"recovery,omitempty"`
	RecoveryFactor *float64  `json:"recovery_factor,omitempty"`
	Note           string    `json:"note,omitempty"`
	At             time.Time `json:"at"`
	Backdated      bool      `json:"backdated,omitempty"`
}

func toEventJSON(e store.Event) eventJSON {
	return eventJSON{
		ID:             e.ID.String(),
		Kind:           string(e.Kind),
		Title:          e.Title,
		Load:           e.Load,
		Recovery:       e.Recovery,
		RecoveryFactor: e.RecoveryFactor,
		Note:           e.Note,
		At:             e.EffectiveDate(),
		Backdated:      e.BackdatedAt != nil,
	}
}

type eventRequest struct {
	Kind           string     `json:"kind"`
	Title          string     `json:"title"`
	Load           float64    `json:"load"`
	Recovery       bool       `json:"recovery"`
	RecoveryFactor *float64   `json:"recovery_factor"`
	Note           string     `json:"note"`
	At             *time.Time `json:"at"` // backdates the event when set
}

func (req eventRequest) event() *store.Event {
	e := &store.Event{
		Kind:           store.EventKind(req.Kind),
		Title:          req.Title,
		Load:           req.Load,
		Recovery:       req.Recovery || req.RecoveryFactor != nil,
		RecoveryFactor: req.RecoveryFactor,
		Note:           req.Note,
	}
	if req.At != nil {
		ms := req.At.UnixMilli()
		e.BackdatedAt = &ms
	}
	return e
}

// dayRange reads ?from= and ?to= (YYYY-MM-DD). to defaults to today and
// from to the defaultDays ending at to.
func (s *Server) dayRange(r *http.Request, defaultDays int) (time.Time, time.Time, error) {
	cal := s.engine.Calendar()
	to := cal.DayStart(s.engine.Now())
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := cal.ParseDay(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = d
	}
	from := cal.AddDays(to, -(defaultDays - 1))
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := cal.ParseDay(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = d
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("from %s is after to %s", cal.Key(from), cal.Key(to))
	}
	if cal.AddDays(from, maxRangeDays).Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("range exceeds %d days", maxRangeDays)
	}
	return from, to, nil
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.dayRange(r, defaultTimelineDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := s.engine.Timeline(r.Context(), from, to)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	cal := s.engine.Calendar()
	writeJSON(w, http.StatusOK, map[string]any{
		"from": cal.Key(from),
		"to":   cal.Key(to),
		"days": days,
	})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	day, err := s.engine.Today(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.dayRange(r, 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.engine.ListEvents(r.Context(), from, to)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = toEventJSON(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(out),
		"events": out,
	})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ev := req.event()
	if err := s.engine.AddEvent(r.Context(), ev); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventJSON(*ev))
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ev := req.event()
	ev.ID = id
	if err := s.engine.UpdateEvent(r.Context(), ev); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventJSON(*ev))
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.engine.DeleteEvent(r.Context(), id); err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateSymptom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string     `json:"name"`
		Severity int        `json:"severity"`
		Positive bool       `json:"positive"`
		Note     string     `json:"note"`
		At       *time.Time `json:"at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	entry := &store.SymptomEntry{
		Name:     req.Name,
		Severity: req.Severity,
		Positive: req.Positive,
		Note:     req.Note,
	}
	if req.At != nil {
		ms := req.At.UnixMilli()
		entry.BackdatedAt = &ms
	}
	if err := s.engine.AddSymptom(r.Context(), entry); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       entry.ID.String(),
		"name":     entry.Name,
		"severity": entry.Severity,
		"positive": entry.Positive,
		"at":       entry.EffectiveDate(),
	})
}

func (s *Server) handleDeleteSymptom(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.engine.DeleteSymptom(r.Context(), id); err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetReflection(w http.ResponseWriter, r *http.Request) {
	day, err := s.engine.Calendar().ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Multiplier float64 `json:"multiplier"`
		Note       string  `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.engine.SetReflection(r.Context(), day, req.Multiplier, req.Note); err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":        s.engine.Calendar().Key(day),
		"multiplier": req.Multiplier,
	})
}

func (s *Server) handleClearReflection(w http.ResponseWriter, r *http.Request) {
	day, err := s.engine.Calendar().ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.engine.ClearReflection(r.Context(), day); err != nil {
		writeEngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
