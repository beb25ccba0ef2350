package recognizer

import "errors"

var (
	// ErrInitFailure is returned when a Recognizer is configured with
	// invalid parameters, or used before it was ever configured.
	ErrInitFailure = errors.New("recognizer init failure")

	// ErrInvalidInput is returned for a measurement older than the last
	// accepted one.
	ErrInvalidInput = errors.New("recognizer invalid input")
)

// Status is the outcome of Reset or Update in enum form, for callers that
// report it over the wire.
type Status int

const (
	StatusOk Status = iota
	StatusInitFailure
	StatusInvalidInput
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusInitFailure:
		return "init_failure"
	case StatusInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// StatusOf maps an error returned by Reset or Update to a Status.
// Errors that are neither sentinel map to StatusInitFailure.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOk
	case errors.Is(err, ErrInvalidInput):
		return StatusInvalidInput
	default:
		return StatusInitFailure
	}
}
