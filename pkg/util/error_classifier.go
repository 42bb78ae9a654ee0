package util

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Error kinds returned by ClassifyDBError.
const (
	KindUniqueViolation = "unique_violation"
	KindNoRows          = "no_rows"
	KindConnection      = "connection"
	KindTimeout         = "timeout"
	KindCanceled        = "canceled"
	KindUnknown         = "unknown"
)

const pgUniqueViolation = "23505"

// ClassifyDBError maps a driver error from either backend to a coarse kind.
// Returns "" for a nil error.
func ClassifyDBError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return KindNoRows
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return KindUniqueViolation
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_CANTOPEN:
			return KindConnection
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return KindUniqueViolation
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	// 文本兜底（sqlmock、包装过的驱动错误）
	errStr := err.Error()
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "UNIQUE constraint") {
		return KindUniqueViolation
	}
	if strings.Contains(errStr, "connection") {
		return KindConnection
	}

	return KindUnknown
}

// IsUniqueViolation reports whether err is a primary-key or unique conflict.
func IsUniqueViolation(err error) bool {
	return ClassifyDBError(err) == KindUniqueViolation
}
