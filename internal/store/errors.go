package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrConflict is returned when a uniqueness constraint is violated
	// (duplicate login, role name, linked identity pair, or role grant).
	ErrConflict = errors.New("record already exists")

	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// translate maps GORM errors to the store's error taxonomy. Uniqueness is
// enforced by the database; a constraint violation is the Conflict outcome,
// never a crash.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
