// Package server exposes the Ramadan status engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smokyabdulrahman/ramadan-status/internal/calendar"
	"github.com/smokyabdulrahman/ramadan-status/internal/clock"
	"github.com/smokyabdulrahman/ramadan-status/internal/logger"
	"github.com/smokyabdulrahman/ramadan-status/internal/ramadan"
)

// StatusService answers status queries. *ramadan.Engine satisfies it.
type StatusService interface {
	Status(ctx context.Context, q ramadan.Query) ramadan.Status
}

// Options configures a Server.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	SlowRequest     time.Duration
	ShutdownTimeout time.Duration
	Clock           clock.Clock
	Logger          *logger.Logger
}

// Server is a chi router plus an http.Server.
type Server struct {
	svc   StatusService
	mux   *chi.Mux
	srv   *http.Server
	clock clock.Clock
	log   logger.Logger
	grace time.Duration
}

type errorBody struct {
	Error string `json:"error"`
}

// New builds a server around svc.
func New(svc StatusService, opts Options) *Server {
	s := &Server{svc: svc, clock: opts.Clock, grace: opts.ShutdownTimeout}
	if opts.Logger != nil {
		s.log = *opts.Logger
	} else {
		s.log = logger.Named("http")
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.grace <= 0 {
		s.grace = 10 * time.Second
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	m := chi.NewRouter()
	m.Use(RequestID, Recover(s.log), AccessLog(s.log, opts.SlowRequest), CORS(opts.AllowedOrigins))
	m.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	m.Get("/healthz", s.handleHealth)
	m.Route("/api/ramadan", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/calendar.ics", s.handleCalendar)
	})

	s.mux = m
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           m,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("http listening")
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("http shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Status(r.Context(), q))
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	st := s.svc.Status(r.Context(), q)
	data, err := calendar.Build(st, s.clock.Now())
	if err != nil {
		log := logger.C(r.Context(), s.log)
		log.Error().Err(err).Msg("calendar export failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "calendar export failed"})
		return
	}
	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="ramadan.ics"`)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
