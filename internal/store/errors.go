package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Constraint violations surfaced by the store.
var (
	// ErrDuplicate indicates a unique-key collision (username or email taken).
	ErrDuplicate = errors.New("duplicate entry, resource already exists")
	// ErrInvalidReference indicates a foreign key pointing at a missing row.
	ErrInvalidReference = errors.New("referenced resource does not exist")
)

// translateErr maps driver-level constraint errors to the store taxonomy.
// Other errors pass through untouched.
func translateErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrDuplicate
		case sqlite3.ErrConstraintForeignKey:
			return ErrInvalidReference
		}
	}
	return err
}
