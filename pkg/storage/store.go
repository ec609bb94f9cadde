// pkg/storage/store.go
// Package storage persists worlds to disk in the binary world format.
// Saves are atomic, and autosaves run behind a circuit breaker so a
// failing disk is not retried every interval.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-strut/pkg/config"
	"github.com/opd-ai/go-strut/pkg/logging"
	"github.com/opd-ai/go-strut/pkg/world"
)

// ErrBreakerOpen is returned by Autosave while saves are suspended
var ErrBreakerOpen = errors.New("autosave suspended after repeated failures")

// Store reads and writes one world file
type Store struct {
	path    string
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// NewStore creates a store for cfg.Path. The autosave breaker opens after
// cfg.BreakerMaxFailures consecutive failures and retries once
// cfg.BreakerTimeout has passed.
func NewStore(cfg config.StorageConfig, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewLogger()
	}
	logger = logger.Component("storage")

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 1
	}
	settings := gobreaker.Settings{
		Name:        "strut-autosave",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Store{
		path:    cfg.Path,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Path returns the world file location
func (s *Store) Path() string { return s.path }

// Save writes w to a temporary file next to the target and renames it into
// place, so a crash never leaves a truncated world behind
func (s *Store) Save(ctx context.Context, w *world.World) error {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = w.Serialize(buf); err != nil {
		tmp.Close()
		return logging.WrapError(err, "serialize world to %s", s.path)
	}
	if err = buf.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename into %s: %w", s.path, err)
	}

	s.logger.Debug(ctx, "world saved",
		"path", s.path,
		"nodes", w.NodeCount(),
		"links", w.LinkCount(),
	)
	return nil
}

// Load reads the world file
func (s *Store) Load(ctx context.Context) (*world.World, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open world: %w", err)
	}
	defer f.Close()

	w, err := world.Deserialize(bufio.NewReader(f))
	if err != nil {
		return nil, logging.WrapError(err, "load world from %s", s.path)
	}

	s.logger.Info(ctx, "world loaded",
		"path", s.path,
		"nodes", w.NodeCount(),
		"links", w.LinkCount(),
	)
	return w, nil
}

// CorruptSuffix is appended to a malformed world file moved aside by
// LoadOrEmpty
const CorruptSuffix = ".corrupt"

// LoadOrEmpty loads the world file, falling back to an empty world when
// the file is missing or unreadable. A malformed file is renamed to
// path+CorruptSuffix first so later saves cannot overwrite it. The returned
// world is never nil; the error explains a fallback other than a missing
// file.
func (s *Store) LoadOrEmpty(ctx context.Context) (*world.World, error) {
	w, err := s.Load(ctx)
	if err == nil {
		return w, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info(ctx, "no saved world, starting empty", "path", s.path)
		return world.New(), nil
	}
	if errors.Is(err, world.ErrMalformed) {
		backup := s.path + CorruptSuffix
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return world.New(), errors.Join(err, fmt.Errorf("keep malformed world: %w", rerr))
		}
		s.logger.Warn(ctx, "malformed world moved aside", "path", s.path, "backup", backup)
	}
	s.logger.Error(ctx, "saved world unusable, starting empty", err, "path", s.path)
	return world.New(), err
}

// Autosave saves w through the circuit breaker. While the breaker is open
// it returns ErrBreakerOpen without touching the disk.
func (s *Store) Autosave(ctx context.Context, w *world.World) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.Save(ctx, w)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.LogWithContext(ctx, slog.LevelDebug, "autosave skipped", "state", s.breaker.State().String())
		return fmt.Errorf("%w: %v", ErrBreakerOpen, err)
	}
	s.logger.LogWithContext(ctx, slog.LevelWarn, "autosave failed",
		"error", err.Error(),
		"state", s.breaker.State().String(),
	)
	return fmt.Errorf("autosave: %w", err)
}

// State returns the autosave breaker state
func (s *Store) State() gobreaker.State {
	return s.breaker.State()
}

// Counts returns the autosave breaker counters
func (s *Store) Counts() gobreaker.Counts {
	return s.breaker.Counts()
}
