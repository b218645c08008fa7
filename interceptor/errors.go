package interceptor

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is matched by every ConflictError.
	ErrConflict = errors.New("interceptor: conflicting configuration")

	// ErrNilStrategy is returned when a nil operations or policy is supplied.
	ErrNilStrategy = errors.New("interceptor: nil strategy")

	// ErrFinalized is returned when a builder is configured after Build.
	ErrFinalized = errors.New("interceptor: builder already built")
)

// ConflictError reports a configuration call rejected because of an earlier
// call. The builder state is unchanged by the rejected call.
type ConflictError struct {
	// Call is the rejected configuration call.
	Call string
	// Prior is the earlier call that makes Call illegal.
	Prior string
	// Reason describes the conflict.
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interceptor: cannot set %s after %s: %s", e.Call, e.Prior, e.Reason)
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func conflict(c, prior call, reason string) error {
	return &ConflictError{Call: string(c), Prior: string(prior), Reason: reason}
}
