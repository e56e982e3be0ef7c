// Package timeout provides the single cooperative-cancellation primitive used
// throughout the analyzer: a read-only deadline token threaded through every
// potentially long-running operation (NFA construction, SCC computation,
// reachability, fuzz iteration).
package timeout

import (
	"errors"
	"time"
)

// ErrTimeout is wrapped by the error Check returns when the deadline has
// passed.
var ErrTimeout = errors.New("redoscope: timeout")

// Timeout is a shared, read-only deadline token. The zero value is an
// unlimited timeout (equivalent to NoTimeout).
type Timeout struct {
	deadline time.Time
	enabled  bool
}

// NoTimeout disables deadline checking entirely.
var NoTimeout = Timeout{}

// New returns a Timeout that expires after d from now.
func New(d time.Duration) Timeout {
	if d <= 0 {
		return NoTimeout
	}
	return Timeout{deadline: time.Now().Add(d), enabled: true}
}

// Check returns an *Error wrapping ErrTimeout if the deadline has passed. tag identifies the
// call site for profiling; it is not otherwise interpreted, and must be kept
// stable across implementations of this spec for comparable traces.
func (t Timeout) Check(tag string) error {
	if !t.enabled {
		return nil
	}
	if time.Now().After(t.deadline) {
		return &Error{Tag: tag}
	}
	return nil
}

// Remaining returns the time left until the deadline, or the largest
// representable duration if disabled.
func (t Timeout) Remaining() time.Duration {
	if !t.enabled {
		return time.Duration(1<<63 - 1)
	}
	return time.Until(t.deadline)
}

// Enabled reports whether this token carries an active deadline.
func (t Timeout) Enabled() bool {
	return t.enabled
}

// Error wraps ErrTimeout with the tag of the check that tripped it.
type Error struct {
	Tag string
}

func (e *Error) Error() string {
	if e.Tag == "" {
		return ErrTimeout.Error()
	}
	return ErrTimeout.Error() + ": " + e.Tag
}

func (e *Error) Unwrap() error {
	return ErrTimeout
}
