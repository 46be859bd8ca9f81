package pso

import (
	"fmt"
)

// ConfigurationError reports an invalid solver or solve parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SolveError reports a solve that was aborted. The swarm may have been
// partially updated and should not be trusted afterwards.
type SolveError struct {
	Round int
	Err   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve aborted in round %d: %v", e.Round, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

// guard runs fn and converts a panic into an error. Vector algebra reports
// dimension mismatches by panicking, and objective functions are user code.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}
