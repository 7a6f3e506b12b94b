package services

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller may not act on the
// resource, e.g. editing someone else's question.
var ErrForbidden = errors.New("forbidden")

// ValidationError reports input violating a field constraint. It is
// produced before any persistence call, and handlers map it to a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
