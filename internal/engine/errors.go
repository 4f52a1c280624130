package engine

import (
	"errors"
	"fmt"
	"time"
)

// Code classifies an engine failure so transport layers can pick a
// user-facing treatment without string-matching error text.
type Code string

const (
	// CodeConfiguration marks invalid or missing static configuration.
	CodeConfiguration Code = "CONFIGURATION"
	// CodeProvider marks a text-generation backend failure.
	CodeProvider Code = "PROVIDER"
	// CodePersistence marks a durable-storage failure.
	CodePersistence Code = "PERSISTENCE"
	// CodeValidation marks rejected user input.
	CodeValidation Code = "VALIDATION"
	// CodeRateLimited marks a cooldown or upstream throttle denial.
	CodeRateLimited Code = "RATE_LIMITED"
)

// Error is the engine's error type. Reason is safe to show to end users;
// Err carries the underlying cause for logs. RetryAfter is set only for
// CodeRateLimited.
type Error struct {
	Code       Code
	Reason     string
	Err        error
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error. err may be nil.
func E(code Code, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// IsCode reports whether err is (or wraps) an engine Error with the given
// code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Reason extracts the user-safe reason from err, falling back to a generic
// message for non-engine errors.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return "something went wrong"
}

// RetryAfter extracts the wait duration from a rate-limit error, or zero.
func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
