package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lazypower/pacing/internal/engine"
	"github.com/lazypower/pacing/internal/importer"
)

func (s *Server) handleGetCapacity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Capacity())
}

func (s *Server) handleUpdateCapacity(w http.ResponseWriter, r *http.Request) {
	var req engine.CapacityUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	info, err := s.engine.UpdateCapacity(req.Apply)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleStartCalibration(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.StartCalibration(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRecordGoodDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day string `json:"day"` // YYYY-MM-DD, defaults to today
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	day := s.engine.Now()
	if req.Day != "" {
		d, err := s.engine.Calendar().ParseDay(req.Day)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		day = d
	}

	info, completed, err := s.engine.RecordGoodDay(r.Context(), day)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"completed": completed,
		"capacity":  info,
	})
}

func (s *Server) handleCancelCalibration(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.CancelCalibration(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleResetBaseline(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.ResetBaseline(r.Context())
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.CacheStats())
}

func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"removed": s.engine.InvalidateCache()})
}

func (s *Server) handleResetCacheStats(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetCacheStats()
	writeJSON(w, http.StatusOK, s.engine.CacheStats())
}

// handleImport accepts a JSONL history body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	batch, err := importer.Parse(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.engine.Import(r.Context(), batch)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
