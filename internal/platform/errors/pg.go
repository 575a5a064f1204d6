package errors

import (
	"context"
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATEs the link store can hit
const (
	pgErrUniqueViolation           = "23505"
	pgErrForeignKeyViolation       = "23503"
	pgErrNotNullViolation          = "23502"
	pgErrCheckViolation            = "23514"
	pgErrStringDataRightTruncation = "22001"
	pgErrInvalidTextRepresentation = "22P02"
	pgErrSerializationFailure      = "40001"
	pgErrDeadlockDetected          = "40P01"
	pgErrLockNotAvailable          = "55P03"
	pgErrReadOnlySQLTransaction    = "25006"
	pgErrCannotConnectNow          = "57P03"
	pgErrUndefinedTable            = "42P01"
)

var codeBySQLState = map[string]ErrorCode{
	pgErrUniqueViolation:           ErrorCodeDuplicateKey,
	pgErrForeignKeyViolation:       ErrorCodeInvalidArgument,
	pgErrStringDataRightTruncation: ErrorCodeInvalidArgument,
	pgErrInvalidTextRepresentation: ErrorCodeInvalidArgument,
	pgErrNotNullViolation:          ErrorCodeValidation,
	pgErrCheckViolation:            ErrorCodeValidation,
	pgErrReadOnlySQLTransaction:    ErrorCodeUnavailable, // failover in progress
	pgErrCannotConnectNow:          ErrorCodeUnavailable, // startup
}

// ExtractPgError finds a *pgconn.PgError anywhere in err's chain
func ExtractPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := stderrs.As(err, &pgErr)
	return pgErr, ok
}

func IsSQLState(err error, code string) bool {
	pgErr, ok := ExtractPgError(err)
	return ok && pgErr.Code == code
}

// IsDuplicateKey reports a unique violation, e.g. the links primary key
func IsDuplicateKey(err error) bool { return IsSQLState(err, pgErrUniqueViolation) }

// DBErrorCode classifies a Postgres error. ok is false when err carries no PgError.
// Contention (serialization, deadlock, lock timeout) and unknown states stay DB errors
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	pgErr, ok := ExtractPgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if c, found := codeBySQLState[pgErr.Code]; found {
		return c, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps a storage error under msg. A deadline becomes Timeout;
// anything without a SQLSTATE is a DB error. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	switch {
	case ok:
	case stderrs.Is(err, context.DeadlineExceeded):
		code = ErrorCodeTimeout
	default:
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}
