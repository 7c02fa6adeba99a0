package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"filtertree/internal/config"
	"filtertree/internal/logging"
	"filtertree/internal/services"
)

// Stage names the store in wrapped errors and logs.
const Stage = "store"

// ErrLocked reports that another process holds the store's write lock.
var ErrLocked = errors.New("store is locked by another process")

// Store persists exported nodes backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	lock   *flock.Flock
	retry  retryPolicy
	batch  batchPolicy
	logger *slog.Logger
}

type retryPolicy struct {
	attempts int
	delay    time.Duration
	maxDelay time.Duration
}

type batchPolicy struct {
	size  int
	delay time.Duration
}

const (
	sqliteBusyCode      = 5
	busyRetryMaxBackoff = 30 * time.Second
)

// OpenOption customizes Open.
type OpenOption func(*Store)

// WithLogger routes store diagnostics to logger.
func WithLogger(logger *slog.Logger) OpenOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ReadOnly skips the exclusive write lock. Commands that only read (stats,
// find) use it so they can run beside an import.
func ReadOnly() OpenOption {
	return func(s *Store) {
		s.lock = nil
	}
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) retryOnBusy(ctx context.Context, op func() error) error {
	attempts := s.retry.attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := s.retry.delay
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == attempts-1 {
			break
		}
		s.logger.Debug("store busy, retrying",
			logging.Int("attempt", attempt+1),
			logging.Duration("delay", delay),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= s.retry.maxDelay {
			delay = next
		}
	}
	if isSQLiteBusy(lastErr) {
		return fmt.Errorf("%w: %w", services.ErrTransient, lastErr)
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := s.retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the node database at cfg.Paths.StorePath.
// Unless ReadOnly is passed, Open takes the exclusive lock at cfg.LockPath()
// and fails with ErrLocked when another process holds it.
func Open(cfg *config.Config, opts ...OpenOption) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("store: nil config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	store := &Store{
		path: cfg.Paths.StorePath,
		lock: flock.New(cfg.LockPath()),
		retry: retryPolicy{
			attempts: cfg.Store.MaxRetries + 1,
			delay:    time.Duration(cfg.Store.RetryDelayMS) * time.Millisecond,
			maxDelay: busyRetryMaxBackoff,
		},
		batch: batchPolicy{
			size:  cfg.Store.BatchSize,
			delay: time.Duration(cfg.Store.BatchDelayMS) * time.Millisecond,
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	store.logger = store.logger.With(logging.String(logging.FieldComponent, Stage))

	if store.lock != nil {
		locked, err := store.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire store lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrLocked, cfg.LockPath())
		}
	}

	// Connection-scoped pragmas go in the DSN so every pooled connection
	// enforces foreign keys; ON DELETE SET NULL depends on it.
	dsn := store.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		store.unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			store.unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store.db = db
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		store.unlock()
		return nil, err
	}

	store.logger.Debug("store opened",
		logging.String("store_path", store.path),
		logging.Bool("locked", store.lock != nil),
	)
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the database connection and releases the write lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.unlock()
	return err
}

func (s *Store) unlock() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("release store lock failed", logging.Error(err))
	}
}
