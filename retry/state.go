package retry

import "time"

// State is the outcome history of one retry execution. Policies read it to
// decide whether another attempt should happen.
//
// A State belongs to a single execution and is not safe for concurrent use.
type State struct {
	// Label identifies the operation being retried, for logs and hooks.
	Label string

	// Attempts is the number of completed attempts.
	Attempts int

	// LastErr is the error returned by the most recent attempt, or nil.
	LastErr error

	// Started is when the first attempt began.
	Started time.Time

	// Exhausted is set once the executor has given up.
	Exhausted bool

	clock Clock
}

func newState(label string, clock Clock) *State {
	return &State{Label: label, Started: clock.Now(), clock: clock}
}

// Elapsed returns the time since the first attempt began.
func (s *State) Elapsed() time.Duration {
	if s.clock == nil {
		return time.Since(s.Started)
	}
	return s.clock.Now().Sub(s.Started)
}

func (s *State) record(err error) {
	s.Attempts++
	s.LastErr = err
}
