package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("payroll/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("payroll/db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails.
	ErrForeignKeyViolation = errors.New("payroll/db: foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint fails.
	ErrCheckViolation = errors.New("payroll/db: check constraint violation")

	// ErrDeadlock is returned for deadlocks and sqlite busy/locked states.
	ErrDeadlock = errors.New("payroll/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline or is
	// cancelled.
	ErrTimeout = errors.New("payroll/db: query timeout")

	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("payroll/db: connection failed")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsDeadlock(err error) bool            { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }
func IsConnectionFailed(err error) bool    { return errors.Is(err, ErrConnectionFailed) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError
// ─────────────────────────────────────────────────────────────────────────────

// DBError pairs a sentinel with the driver error that caused it.
// errors.Is matches the sentinel; errors.As / Unwrap reach the driver error.
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

func wrap(sentinel, cause error) error {
	return &DBError{Sentinel: sentinel, Cause: cause}
}

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package sentinels.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper understands all three supported drivers.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if mapped := mapCommon(err); mapped != err {
			return mapped
		}
		for _, m := range []func(error) error{mapPQError, mapMySQLError, mapSQLiteError} {
			if mapped := m(err); mapped != nil {
				return mapped
			}
		}
		return err
	})
}

// driverMapper builds a mapper for a single driver: the common rules first,
// then the driver specific ones.
func driverMapper(specific func(error) error) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if mapped := mapCommon(err); mapped != err {
			return mapped
		}
		if mapped := specific(err); mapped != nil {
			return mapped
		}
		return err
	})
}

// ChainMapper tries each mapper in order; the first one that changes the
// error wins.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}

func mapCommon(err error) error {
	if err == nil {
		return nil
	}
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err // already mapped
	}
	if errors.Is(err, sql.ErrNoRows) {
		return wrap(ErrNotFound, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrap(ErrTimeout, err)
	}
	if errors.Is(err, driver.ErrBadConn) {
		return wrap(ErrConnectionFailed, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return wrap(ErrConnectionFailed, err)
	}
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// SQLSTATE codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch code := string(pqErr.Code); code {
	case "23505":
		return wrap(ErrDuplicateKey, err)
	case "23503":
		return wrap(ErrForeignKeyViolation, err)
	case "23514":
		return wrap(ErrCheckViolation, err)
	case "40P01":
		return wrap(ErrDeadlock, err)
	case "57014":
		return wrap(ErrTimeout, err)
	default:
		if pqErr.Code.Class() == "08" {
			return wrap(ErrConnectionFailed, err)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MySQL (go-sql-driver/mysql)
// ─────────────────────────────────────────────────────────────────────────────

func mapMySQLError(err error) error {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return wrap(ErrConnectionFailed, err)
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return nil
	}
	switch me.Number {
	case 1062: // ER_DUP_ENTRY
		return wrap(ErrDuplicateKey, err)
	case 1451, 1452, 1216, 1217:
		return wrap(ErrForeignKeyViolation, err)
	case 3819: // ER_CHECK_CONSTRAINT_VIOLATED
		return wrap(ErrCheckViolation, err)
	case 1213: // ER_LOCK_DEADLOCK
		return wrap(ErrDeadlock, err)
	case 3024: // ER_QUERY_TIMEOUT
		return wrap(ErrTimeout, err)
	case 1045, 1049, 2002, 2003, 2006, 2013:
		return wrap(ErrConnectionFailed, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

func mapSQLiteError(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return nil
	}
	switch se.Code {
	case sqlite3.ErrConstraint:
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return wrap(ErrDuplicateKey, err)
		case sqlite3.ErrConstraintForeignKey:
			return wrap(ErrForeignKeyViolation, err)
		case sqlite3.ErrConstraintCheck:
			return wrap(ErrCheckViolation, err)
		}
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return wrap(ErrDeadlock, err)
	case sqlite3.ErrCantOpen:
		return wrap(ErrConnectionFailed, err)
	case sqlite3.ErrInterrupt:
		return wrap(ErrTimeout, err)
	}
	return nil
}
