package triage

import (
	"errors"
	"fmt"
)

// ErrEmptyContent rejects a request before any model call is made.
var ErrEmptyContent = errors.New("no email content provided")

// ModelOutputError reports a completion that did not contain a parseable JSON
// object. Raw carries the exact fence-stripped model text for postmortems;
// coercing this case into a default object would hide model drift.
type ModelOutputError struct {
	Raw string
	Err error
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("model returned invalid JSON: %v", e.Err)
}

func (e *ModelOutputError) Unwrap() error {
	return e.Err
}
