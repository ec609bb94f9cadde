// Package health serves the status of a running sandbox over HTTP: a
// liveness probe, a readiness probe backed by component checks and the
// sandbox statistics as JSON.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-strut/pkg/logging"
)

// HealthCheck is one component probed by the readiness endpoint
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated readiness result
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of one check
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// HealthChecker runs the registered checks
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a checker with no checks
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers check, replacing one of the same name
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// Names returns the registered check names in order
func (hc *HealthChecker) Names() []string {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckHealth runs every check. The result is healthy only if all pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: statusHealthy,
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}
	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = statusUnhealthy
			status.Checks[name] = ComponentHealth{Status: statusUnhealthy, Message: err.Error()}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: statusHealthy}
	}
	return status
}

// LivenessHandler answers 200 while the process serves requests
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler answers 200 when every check passes, else 503
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)
	code := http.StatusOK
	if health.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// SimulationCheck fails when the frame counter stops advancing while the
// simulation is not paused
type SimulationCheck struct {
	frames     func() uint64
	paused     func() bool
	stallAfter time.Duration

	mu        sync.Mutex
	lastFrame uint64
	lastMove  time.Time
	now       func() time.Time
}

// NewSimulationCheck creates a check over the sandbox frame counter
func NewSimulationCheck(frames func() uint64, paused func() bool, stallAfter time.Duration) *SimulationCheck {
	return &SimulationCheck{
		frames:     frames,
		paused:     paused,
		stallAfter: stallAfter,
		lastFrame:  frames(),
		lastMove:   time.Now(),
		now:        time.Now,
	}
}

// Name implements HealthCheck
func (s *SimulationCheck) Name() string { return "simulation" }

// Check implements HealthCheck
func (s *SimulationCheck) Check(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	frame := s.frames()
	if frame != s.lastFrame || s.paused() {
		s.lastFrame = frame
		s.lastMove = now
		return nil
	}
	if stalled := now.Sub(s.lastMove); stalled > s.stallAfter {
		return fmt.Errorf("simulation stalled at frame %d for %s", frame, stalled.Round(time.Millisecond))
	}
	return nil
}

// StorageCheck fails while the autosave circuit breaker is open
type StorageCheck struct {
	state func() gobreaker.State
}

// NewStorageCheck creates a check over the store's breaker state
func NewStorageCheck(state func() gobreaker.State) *StorageCheck {
	return &StorageCheck{state: state}
}

// Name implements HealthCheck
func (s *StorageCheck) Name() string { return "storage" }

// Check implements HealthCheck
func (s *StorageCheck) Check(ctx context.Context) error {
	if st := s.state(); st == gobreaker.StateOpen {
		return fmt.Errorf("autosave breaker is %s", st)
	}
	return nil
}

// MemoryHealthCheck fails when the heap grows past a limit
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a memory check. A nil usage function reads
// the Go runtime statistics.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = heapMB
	}
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

func heapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}

// Name implements HealthCheck
func (m *MemoryHealthCheck) Name() string { return "memory" }

// Check implements HealthCheck
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// Server exposes /health, /ready and /stats
type Server struct {
	checker *HealthChecker
	srv     *http.Server
	logger  *logging.Logger
}

// NewServer creates a status server on addr. stats is encoded as JSON on
// every /stats request.
func NewServer(addr string, checker *HealthChecker, stats func() any, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewLogger()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.LivenessHandler)
	mux.HandleFunc("/ready", checker.ReadinessHandler)
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stats())
	})

	return &Server{
		checker: checker,
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		logger: logger.Component("health"),
	}
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start serves in the background until Shutdown
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.logger.Info(ctx, "status server listening", "address", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "status server failed", err)
		}
	}()
}

// Shutdown stops the server, waiting for requests in flight
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
