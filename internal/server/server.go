package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lazypower/pacing/internal/engine"
	"github.com/lazypower/pacing/internal/store"
)

// Server is the pacing HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over eng.
func New(eng *engine.Engine, version string) *Server {
	s := &Server{
		db:      eng.DB,
		engine:  eng,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/load", s.handleTimeline)
		r.Get("/load/today", s.handleToday)

		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleCreateEvent)
		r.Put("/events/{id}", s.handleUpdateEvent)
		r.Delete("/events/{id}", s.handleDeleteEvent)

		r.Post("/symptoms", s.handleCreateSymptom)
		r.Delete("/symptoms/{id}", s.handleDeleteSymptom)

		r.Put("/reflections/{day}", s.handleSetReflection)
		r.Delete("/reflections/{day}", s.handleClearReflection)

		r.Get("/capacity", s.handleGetCapacity)
		r.Put("/capacity", s.handleUpdateCapacity)
		r.Post("/calibration/start", s.handleStartCalibration)
		r.Post("/calibration/good-day", s.handleRecordGoodDay)
		r.Post("/calibration/cancel", s.handleCancelCalibration)
		r.Delete("/baseline", s.handleResetBaseline)

		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleInvalidateCache)
		r.Delete("/cache/stats", s.handleResetCacheStats)

		r.Post("/import", s.handleImport)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"db":       dbOK,
		"db_path":  s.db.Path,
		"timezone": s.engine.Calendar().Location().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps engine and store errors onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("server: %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
