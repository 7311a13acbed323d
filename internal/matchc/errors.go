package matchc

import (
	"errors"
	"fmt"

	"tern/internal/diag"
)

// errCannotFlatten signals that the simultaneous multi-argument optimization
// does not apply to a clause list. It is caught by the entry point that
// attempted flattening, which falls back to materializing a tuple; it never
// reaches callers.
var errCannotFlatten = errors.New("matchc: rows are not uniformly tuple-shaped")

// InternalError is a structural invariant violation: a defect in the
// preprocessor or specializer, not a user error. Compilation aborts.
type InternalError struct {
	Code diag.Code
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("matchc: %s: %s", e.Code, e.Msg)
}

func internalErr(code diag.Code, format string, args ...any) error {
	return &InternalError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
