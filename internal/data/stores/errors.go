package stores

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/colonyops/quill/internal/core/kv"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsBusyError returns true if the error is a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, kv.ErrNotFound)
}

// isUniqueConstraintError reports a violated UNIQUE or PRIMARY KEY constraint.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

const busyRetries = 3

// execRetry runs a write statement, retrying a few times while another
// process holds the database lock past the busy timeout.
func execRetry(ctx context.Context, conn *sql.DB, query string, args ...any) error {
	wait := 50 * time.Millisecond
	for attempt := 1; ; attempt++ {
		_, err := conn.ExecContext(ctx, query, args...)
		if err == nil || !IsBusyError(err) || attempt == busyRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}
