package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextRepr     = "22P02"
	pgForeignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	return hasCode(err, pgUniqueViolation)
}

// isInvalidID reports a malformed uuid literal; callers treat it as a miss.
func isInvalidID(err error) bool {
	return hasCode(err, pgInvalidTextRepr)
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, pgForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
