package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrConcurrentUpdate = errors.New("record changed concurrently")
	ErrLocked           = errors.New("record is locked")
	ErrInvalidEntry     = errors.New("invalid ledger entry")
)

// maxTxRetries bounds optimistic WATCH retries before giving up.
const maxTxRetries = 5

// IsPermanent reports whether a write can never succeed on retry: the entry
// itself is malformed, or Postgres rejected its data or a constraint.
func IsPermanent(err error) bool {
	if errors.Is(err, ErrInvalidEntry) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// data exception or integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}
