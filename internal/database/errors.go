package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "github.com/allisson/envvault/internal/errors"
)

const (
	pgUniqueViolation    = "23505"
	pgConnectionClass    = "08"
	mysqlDuplicateEntry  = 1062
	sqliteUniqueFallback = "UNIQUE constraint failed"
	// database/sql does not export this one.
	sqlDatabaseClosed = "sql: database is closed"
)

// MySQL client errors: CR_CONNECTION_ERROR, CR_CONN_HOST_ERROR, CR_SERVER_GONE_ERROR, CR_SERVER_LOST.
var mysqlConnectionErrors = map[uint16]bool{2002: true, 2003: true, 2006: true, 2013: true}

// IsUniqueViolation reports whether err is a unique or primary key violation raised by any of
// the supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return strings.Contains(err.Error(), sqliteUniqueFallback)
}

// IsUnavailable reports whether err means the database could not be reached, as opposed to a
// query that reached it and failed.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code.Class()) == pgConnectionClass
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlConnectionErrors[mysqlErr.Number]
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
			return true
		}
		return false
	}

	return strings.Contains(err.Error(), sqlDatabaseClosed)
}

// WrapError adds message to a repository error and marks connection failures as
// apperrors.ErrUnavailable.
func WrapError(err error, message string) error {
	if IsUnavailable(err) {
		return apperrors.Unavailable(err, message)
	}
	return apperrors.Wrap(err, message)
}
