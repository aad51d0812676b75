package timeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for the editing engine. Callers branch with errors.Is;
// the HTTP layer maps them onto status codes.
var (
	// ErrValidation covers user-recoverable rejections: clip overlap,
	// non-positive duration, media type mismatch. The model is left
	// unchanged and the UI can animate a snap-back.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers references to unknown track or clip ids.
	ErrNotFound = errors.New("not found")

	// ErrClock covers non-monotonic or negative playback ticks. The tick
	// is dropped and logged, never fatal.
	ErrClock = errors.New("clock error")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
