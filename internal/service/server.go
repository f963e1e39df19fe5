// Package service exposes the scheduling pipeline over HTTP. The roster is
// loaded once at startup; every request runs the pure
// normalize-build-solve-render pipeline against it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kingrea/convene/internal/roster"
	"github.com/kingrea/convene/internal/runlog"
	"github.com/kingrea/convene/internal/schedule"
	"github.com/kingrea/convene/internal/solve"
	"github.com/kingrea/convene/internal/solve/backtrack"
)

// Version identifies the service API revision reported by /health.
const Version = "0.2.0"

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// ErrDisabled is returned by Start when the settings turn the service off.
var ErrDisabled = errors.New("service: server disabled")

// Logger receives operational messages. The default drops them.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server wraps the HTTP listener and handlers backing the scheduling service.
type Server struct {
	settings Settings
	roster   *roster.Roster
	solver   solve.Solver
	runLog   *runlog.Log
	logger   Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	scheduler *schedule.Scheduler
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithSolver overrides the default engine.
func WithSolver(s solve.Solver) Option {
	return func(srv *Server) {
		if s != nil {
			srv.solver = s
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(srv *Server) {
		if clock != nil {
			srv.clock = clock
		}
	}
}

// WithRunLog records every run's outcome.
func WithRunLog(log *runlog.Log) Option {
	return func(srv *Server) {
		srv.runLog = log
	}
}

// NewServer prepares a scheduling server for the given roster.
func NewServer(settings Settings, r *roster.Roster, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		roster:   r,
		solver:   backtrack.New(),
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("service: server is nil")
	}
	if !s.settings.Enabled {
		return ErrDisabled
	}
	if s.roster == nil || s.roster.Len() == 0 {
		return fmt.Errorf("service: roster is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("service: server already started")
	}
	scheduler, err := schedule.New(s.solver,
		schedule.WithBudget(s.settings.SolveBudget),
		schedule.WithRunLog(s.runLog),
		schedule.WithClock(s.clock),
	)
	if err != nil {
		return fmt.Errorf("service: build scheduler: %w", err)
	}
	s.scheduler = scheduler

	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("service: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/schedule", s.handleSchedule)
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("service: serve error: %v", err)
		}
	}()
	s.logger.Printf("service: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	start := s.startTime
	s.mu.RUnlock()
	if start.IsZero() {
		return 0
	}
	return int64(s.now().Sub(start).Seconds())
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	RosterRoles   int    `json:"roster_roles"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type scheduleResponse struct {
	Verdict   string             `json:"verdict"`
	Objective int64              `json:"objective"`
	Schedule  *schedule.Schedule `json:"schedule"`
}

type verdictResponse struct {
	Verdict string `json:"verdict"`
	Error   string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	resp := healthResponse{
		Status:        string(s.Status()),
		Version:       Version,
		RosterRoles:   s.roster.Len(),
		UptimeSeconds: s.uptimeSeconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return
	}
	var req schedule.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.RLock()
	scheduler := s.scheduler
	s.mu.RUnlock()
	if scheduler == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server not started"})
		return
	}
	outcome, err := scheduler.Run(r.Context(), s.roster, req)
	switch {
	case errors.Is(err, schedule.ErrInfeasible):
		writeJSON(w, http.StatusUnprocessableEntity, verdictResponse{
			Verdict: string(solve.VerdictInfeasible),
			Error:   "no schedule satisfies every requirement; remove one and try again",
		})
		return
	case errors.Is(err, schedule.ErrNoSolution):
		writeJSON(w, http.StatusGatewayTimeout, verdictResponse{
			Verdict: string(solve.VerdictUnknown),
			Error:   "no schedule found within the solve budget",
		})
		return
	case err != nil:
		s.logger.Printf("service: run error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "scheduling failed"})
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{
		Verdict:   string(outcome.Verdict),
		Objective: outcome.Objective,
		Schedule:  outcome.Schedule,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
