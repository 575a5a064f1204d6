package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDBErrorCode(t *testing.T) {
	cases := map[string]ErrorCode{
		pgErrUniqueViolation:           ErrorCodeDuplicateKey,
		pgErrForeignKeyViolation:       ErrorCodeInvalidArgument,
		pgErrNotNullViolation:          ErrorCodeValidation,
		pgErrInvalidTextRepresentation: ErrorCodeInvalidArgument,
		pgErrDeadlockDetected:          ErrorCodeDB,
		pgErrUndefinedTable:            ErrorCodeDB,
		pgErrCheckViolation:            ErrorCodeValidation,
		pgErrCannotConnectNow:          ErrorCodeUnavailable,
		"XX000":                        ErrorCodeDB,
	}
	for state, want := range cases {
		got, ok := DBErrorCode(&pgconn.PgError{Code: state})
		if !ok || got != want {
			t.Fatalf("DBErrorCode(%s) = %d,%v want %d", state, got, ok, want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("not pg")); ok {
		t.Fatalf("non pg errors must report ok=false")
	}
}

func TestIsDuplicateKey_ThroughWrapping(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "links_link_key"}
	wrapped := fmt.Errorf("insert link: %w", pgErr)
	if !IsDuplicateKey(wrapped) {
		t.Fatalf("expected duplicate key through wrapping")
	}
	if got, ok := ExtractPgError(wrapped); !ok || got.ConstraintName != "links_link_key" {
		t.Fatalf("ExtractPgError = %v %v", got, ok)
	}
	if IsDuplicateKey(stderrs.New("x")) {
		t.Fatalf("plain error is not a duplicate")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("nil in, nil out")
	}
	err := FromPostgres(&pgconn.PgError{Code: pgErrUniqueViolation}, "insert link")
	if CodeOf(err) != ErrorCodeDuplicateKey {
		t.Fatalf("code = %d", CodeOf(err))
	}
	err = FromPostgres(stderrs.New("conn reset"), "count links")
	if CodeOf(err) != ErrorCodeDB {
		t.Fatalf("foreign errors map to DB, got %d", CodeOf(err))
	}
	err = FromPostgres(fmt.Errorf("acquire: %w", context.DeadlineExceeded), "count links")
	if CodeOf(err) != ErrorCodeTimeout || HTTPStatus(err) != 504 {
		t.Fatalf("deadline should map to timeout, got %d", CodeOf(err))
	}
}
