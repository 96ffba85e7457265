package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/speaker/internal/common"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Translate maps driver errors to the common taxonomy, keeping the driver
// message. Errors that already carry a taxonomy kind and unknown errors are
// returned as is.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}

	kind := classify(err)
	if kind == nil || errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %v", kind, err)
}

func classify(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		if kind := classifyCode(se.Code()); kind != nil {
			return kind
		}
	}
	return classifyMessage(err.Error())
}

func classifyCode(code int) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return common.ErrDuplicateKey
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return common.ErrNotFound
	case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return common.ErrInvalidArgument
	}
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return common.ErrTransactionAborted
	case sqlite3.SQLITE_READONLY:
		return common.ErrInvalidArgument
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
		return common.ErrStoreUnavailable
	}
	// Plain SQLITE_CONSTRAINT without an extended code falls through to the
	// message.
	return nil
}

func classifyMessage(msg string) error {
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return common.ErrDuplicateKey
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return common.ErrNotFound
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return common.ErrInvalidArgument
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"):
		return common.ErrTransactionAborted
	case strings.Contains(msg, "attempt to write a readonly database"):
		return common.ErrInvalidArgument
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-index violation.
func IsUniqueViolation(err error) bool {
	return errors.Is(Translate(err), common.ErrDuplicateKey)
}
