package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chainlink-tracker/chainlink/internal/debug"
	"github.com/chainlink-tracker/chainlink/internal/storage"
)

// dbExecer is satisfied by *sql.DB and *sql.Conn so read helpers can run
// either on the pool or inside a write transaction.
type dbExecer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withTx runs fn inside a BEGIN IMMEDIATE transaction on a dedicated connection.
//
// IMMEDIATE takes the write lock up front, so the reads fn performs see the
// state its writes are applied to. database/sql's BeginTx always starts a
// DEFERRED transaction, hence the raw statements.
//
// The transaction commits when fn returns nil and rolls back on error or panic.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return wrapDBError("acquire connection", err)
	}
	defer func() { _ = conn.Close() }()

	if err := s.beginImmediate(ctx, conn); err != nil {
		return err
	}

	// ROLLBACK uses context.Background() so cleanup runs even if ctx is canceled.
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return wrapDBError("commit transaction", err)
	}
	committed = true
	return nil
}

// beginImmediate retries BEGIN IMMEDIATE with exponential backoff while the
// database is locked by another writer, for at most s.lockTimeout.
func (s *SQLiteStorage) beginImmediate(ctx context.Context, conn *sql.Conn) error {
	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(10*time.Millisecond),
		backoff.WithMaxInterval(250*time.Millisecond),
		backoff.WithMaxElapsedTime(s.lockTimeout),
	)

	attempt := 0
	op := func() error {
		attempt++
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		if err == nil {
			return nil
		}
		if isBusyError(err) {
			debug.Logf("begin immediate: database busy (attempt %d)\n", attempt)
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(op, backoff.WithContext(bo, ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if isBusyError(err) {
		return fmt.Errorf("begin transaction after %d attempts: %w", attempt, storage.ErrBusy)
	}
	return wrapDBError("begin transaction", err)
}
