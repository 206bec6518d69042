// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	// Import SQLite driver
	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"

	"github.com/chainlink-tracker/chainlink/internal/debug"
	"github.com/chainlink-tracker/chainlink/internal/storage"
)

// Verify SQLiteStorage implements storage.Storage at compile time
var _ storage.Storage = (*SQLiteStorage)(nil)

// DefaultLockTimeout bounds how long a writer retries BEGIN IMMEDIATE while
// another process holds the write lock.
const DefaultLockTimeout = 5 * time.Second

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db          *sql.DB
	dbPath      string
	lockTimeout time.Duration
	closed      atomic.Bool // Tracks whether Close() has been called
}

// Options tunes a store opened with NewWithOptions.
type Options struct {
	// LockTimeout is the retry budget for acquiring the write lock.
	// Zero means DefaultLockTimeout.
	LockTimeout time.Duration
}

// setupWASMCache configures WASM compilation caching to reduce SQLite startup time.
// Returns the cache directory path (empty string if using in-memory cache).
//
// The cache lives under os.UserCacheDir()/chainlink/wasm and is keyed by
// wazero's version, so upgrades never read a stale artifact.
func setupWASMCache() string {
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "chainlink", "wasm")
	}

	var cache wazero.CompilationCache
	if cacheDir != "" {
		if c, err := wazero.NewCompilationCacheWithDir(cacheDir); err == nil {
			cache = c
		}
	}

	// Fallback to in-memory cache if dir creation failed
	if cache == nil {
		cache = wazero.NewCompilationCache()
		cacheDir = ""
	}

	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)

	return cacheDir
}

func init() {
	_ = setupWASMCache()
}

// New opens (creating if necessary) the database at path, migrates it to the
// current schema version and returns a ready store.
func New(ctx context.Context, path string) (*SQLiteStorage, error) {
	return NewWithOptions(ctx, path, Options{})
}

// NewWithOptions is New with explicit tuning.
func NewWithOptions(ctx context.Context, path string, opts Options) (*SQLiteStorage, error) {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}

	isInMemory := path == ":memory:" ||
		(strings.HasPrefix(path, "file:") && strings.Contains(path, "mode=memory"))

	// busy_timeout is kept short: BEGIN IMMEDIATE is retried with backoff on top
	// of it, bounded by opts.LockTimeout.
	const pragmas = "_pragma=foreign_keys(ON)&_pragma=busy_timeout(1000)"

	var connStr string
	switch {
	case path == ":memory:":
		connStr = "file:memdb?mode=memory&cache=shared&_pragma=journal_mode(DELETE)&" + pragmas
	case strings.HasPrefix(path, "file:"):
		connStr = path
		if !strings.Contains(path, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			connStr += sep + pragmas
		}
	default:
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		connStr = "file:" + path + "?" + pragmas
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory databases are isolated per connection, so pin the pool to one.
	if isInMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(runtime.NumCPU() + 1) // 1 writer + N readers
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)
	}

	if !isInMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", wrapDBError("journal mode", err))
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	absPath := path
	if !isInMemory && !strings.HasPrefix(path, "file:") {
		absPath, err = filepath.Abs(path)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	return &SQLiteStorage{
		db:          db,
		dbPath:      absPath,
		lockTimeout: opts.LockTimeout,
	}, nil
}

// initSchema applies the base schema, runs pending migrations and probes the
// result. A failed probe rewinds user_version and replays every migration
// once before open fails.
func initSchema(ctx context.Context, db *sql.DB) error {
	if err := applyBaseSchema(ctx, db); err != nil {
		return err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return err
	}

	if err := verifySchema(ctx, db); err != nil {
		debug.Logf("schema probe failed (%v), replaying migrations\n", err)
		if err := setUserVersion(ctx, db, 0); err != nil {
			return err
		}
		if retryErr := RunMigrations(ctx, db); retryErr != nil {
			return fmt.Errorf("migration retry failed after schema probe failure: %w (original: %w)", retryErr, err)
		}
		if err := verifySchema(ctx, db); err != nil {
			return fmt.Errorf("schema probe failed after migration retry: %w. Database may be corrupted or from an incompatible version", err)
		}
	}
	return nil
}

// Close closes the database connection.
// It checkpoints the WAL to ensure all writes are flushed to the main database file.
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Path returns the absolute path to the database file
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// IsClosed returns true if Close() has been called on this storage
func (s *SQLiteStorage) IsClosed() bool {
	return s.closed.Load()
}

// SchemaVersion reports the version stamped in the database file.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	return getUserVersion(ctx, s.db)
}
