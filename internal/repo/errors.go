package repo

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage-level sentinels. Services translate these into their own taxonomy.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already taken")
)

// Named unique constraints from the users migration. The constraint name is
// what lets a racing insert be remapped to the right duplicate error.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// translateUniqueViolation remaps postgres unique-index violations on the
// users table to the duplicate sentinels; every other error passes through.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return ErrDuplicateUsername
		case emailConstraint:
			return ErrDuplicateEmail
		}
	}
	return err
}
