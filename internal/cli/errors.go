package cli

import (
	"errors"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// exitError carries the exit code a failed command should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }

func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

// userErrors are caused by the request rather than the environment.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrFieldNotFound,
	types.ErrConfirmationRequired,
}

// exitCode maps err to an exit code. Errors without an explicit code are
// user errors when they are validation or lookup failures, and system
// errors otherwise.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if types.IsValidation(err) {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	var se *types.StorageError
	if errors.As(err, &se) {
		return exitSysError
	}
	// Flag and argument errors from cobra.
	return exitUserError
}
