package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation   = "23505"
	pgSerializationFail = "40001"
	pgDeadlockDetected  = "40P01"
)

// isPgCode reports whether err is a pg error with the given SQLSTATE.
func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// IsUniqueViolation reports a unique constraint failure.
func IsUniqueViolation(err error) bool { return isPgCode(err, pgUniqueViolation) }

// IsRetryable reports transaction failures worth one more attempt:
// serialization failures, deadlocks, and lost unique-index races.
func IsRetryable(err error) bool {
	return isPgCode(err, pgSerializationFail) ||
		isPgCode(err, pgDeadlockDetected) ||
		isPgCode(err, pgUniqueViolation)
}
