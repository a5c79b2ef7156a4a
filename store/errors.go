package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by single-row fetches for ids that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraintViolation covers foreign-key references to missing parents
	// and composite-uniqueness violations.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrStorageIO wraps failures of the underlying storage engine. Callers
	// may retry such an operation once; the write either fully committed or
	// fully failed.
	ErrStorageIO = errors.New("storage error")
)

// constraintIfMissing turns a NotFound on a parent lookup into the
// ConstraintViolation the caller's write must fail with; other errors pass
// through.
func constraintIfMissing(err error, kind, id string) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s %q does not exist", ErrConstraintViolation, kind, id)
	}
	return err
}

// translate maps GORM/driver errors onto the store's error taxonomy.
// Requires gorm.Config.TranslateError so the driver's unique/FK failures
// arrive as gorm sentinel errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	default:
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
}
