package proximity

import "errors"

// ErrNotFound is returned when the entity addressed by a location update
// does not exist.
var ErrNotFound = errors.New("entity not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
