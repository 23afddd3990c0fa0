// Package session runs the asynchronous fetch lifecycles behind the search
// box and the detail view.
//
// A session owns one Controller. Each network call gets a fresh Token;
// starting a call cancels the previous one, and a settled call is applied
// only if its Token is still the live one. Calls run as tea.Cmd goroutines
// and report back with SearchSettled or DetailSettled, which the root model
// hands to Apply on the Update goroutine. No session state is touched off
// that goroutine.
package session

// Status is the visible phase of a session.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// State is a tagged variant: exactly one of idle, loading, success(value),
// or error(message). The zero value is idle.
type State[T any] struct {
	status Status
	value  T
	msg    string
}

// Idle returns the idle state.
func Idle[T any]() State[T] { return State[T]{status: StatusIdle} }

// Loading returns the loading state.
func Loading[T any]() State[T] { return State[T]{status: StatusLoading} }

// Success returns a success state carrying v.
func Success[T any](v T) State[T] { return State[T]{status: StatusSuccess, value: v} }

// Failed returns an error state carrying msg.
func Failed[T any](msg string) State[T] { return State[T]{status: StatusError, msg: msg} }

// Status returns the active variant.
func (s State[T]) Status() Status { return s.status }

// Value returns the success payload. ok is false in every other variant.
func (s State[T]) Value() (v T, ok bool) {
	if s.status != StatusSuccess {
		return v, false
	}
	return s.value, true
}

// ErrorMessage returns the message of an error state, or "".
func (s State[T]) ErrorMessage() string {
	if s.status != StatusError {
		return ""
	}
	return s.msg
}

// IsLoading reports whether the state is loading.
func (s State[T]) IsLoading() bool { return s.status == StatusLoading }
