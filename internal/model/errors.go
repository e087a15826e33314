package model

import (
	"errors"
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry and classification logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ValidationError is a recoverable input problem shown to the user as a warning.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EmptyJobTitleWarning is shown when the user submits without a job title.
const EmptyJobTitleWarning = "Please enter a job title before generating the resume sections."

// ErrEmptyJobTitle is returned by submit when no job title has been entered.
var ErrEmptyJobTitle = &ValidationError{Field: "job_title", Message: EmptyJobTitleWarning}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
