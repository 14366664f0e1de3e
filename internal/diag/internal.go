package diag

import "fmt"

// InternalError reports a violation of a compiler invariant. It is a defect
// in an earlier stage, never a user mistake, and is kept distinct from
// Diagnostic so drivers can render the two differently.
type InternalError struct {
	Stage   Stage
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error (%s): %s", e.Stage, e.Message)
}

// Internalf builds an InternalError for the given stage.
func Internalf(stage Stage, format string, args ...any) *InternalError {
	return &InternalError{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInternal reports whether err is an internal compiler error.
func IsInternal(err error) bool {
	_, ok := err.(*InternalError)
	return ok
}
