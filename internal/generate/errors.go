package generate

import "errors"

// ErrInvalidCredential is the single answer for an unknown, inactive or
// otherwise unusable key reference. Keeping it generic avoids leaking
// whether a given id exists.
var ErrInvalidCredential = errors.New("Invalid or inactive API key")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}
