package service

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound signals that an operation referenced a task id that
// does not exist. Distinct from validation failures so the HTTP layer
// can map it to 404.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports bad or missing caller input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
