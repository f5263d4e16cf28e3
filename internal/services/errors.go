package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services. Handlers map these to HTTP status
// codes in handleServiceError.
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAnswerNotFound   = errors.New("answer not found")

	ErrAttemptNotSubmitted     = errors.New("attempt has not been submitted")
	ErrQuestionNotInAttempt    = errors.New("question does not belong to the attempt's exam")
	ErrUnsupportedImportFormat = errors.New("unsupported import file format")
)

// ValidationError describes a single invalid request field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsNotFoundError reports whether err maps to a 404
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrAnswerNotFound)
}

// IsConflictError reports whether err maps to a 409
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAttemptNotSubmitted) ||
		errors.Is(err, ErrQuestionNotInAttempt)
}
