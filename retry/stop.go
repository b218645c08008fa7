package retry

import (
	"errors"

	"github.com/cenkalti/backoff/v5"
)

// Stop wraps an error to signal that it should not be retried. The executor
// gives up immediately and treats the unwrapped error as the final outcome,
// so a recovery callback still runs.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsStop reports whether err was marked terminal with Stop.
func IsStop(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}

// terminal returns the unwrapped error and true when err was marked with Stop.
func terminal(err error) (error, bool) {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap(), true
	}
	return err, false
}
