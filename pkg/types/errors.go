package types

import (
	"errors"
	"fmt"
)

// Validation errors. They are returned before any mutation happens.
var (
	ErrInvalidName      = errors.New("cluster name must not be empty")
	ErrNoFields         = errors.New("cluster needs at least one field")
	ErrInvalidFieldName = errors.New("field name must not be empty")
	ErrEmptyItem        = errors.New("at least one field must have a value")
)

// Editing session errors.
var (
	ErrFieldNotFound        = errors.New("field not found")
	ErrDraftClosed          = errors.New("edit session is closed")
	ErrConfirmationRequired = errors.New("items contain data for this field")
)

var validationErrors = []error{
	ErrInvalidName,
	ErrNoFields,
	ErrInvalidFieldName,
	ErrEmptyItem,
}

// IsValidation reports whether err is one of the validation errors.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StorageError reports a failed persistence commit. The in-memory state the
// caller holds may no longer match what is stored.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err for op. It returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
