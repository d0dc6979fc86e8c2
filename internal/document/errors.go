package document

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrTooShort               = errors.New("sanitized text is too short to process")
	ErrExtractionService      = errors.New("extraction service error")
	ErrMalformedExtraction    = errors.New("malformed extraction")
	ErrSchemaViolation        = errors.New("extraction schema violation")
	ErrCategoryMissing        = errors.New("category missing")
	ErrCategoryConflict       = errors.New("category conflict")
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrOCR                    = errors.New("ocr failed")
)

// Error is a pipeline failure of a given Kind.
type Error struct {
	Kind    error
	Message string
	Cause   error

	// StatusCode and Body are set for ErrExtractionService when the oracle answered
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is matches the error's Kind
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error of the given kind
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ServiceError builds an ErrExtractionService error with the oracle's status and raw body
func ServiceError(statusCode int, body string, cause error) *Error {
	return &Error{
		Kind:       ErrExtractionService,
		Message:    "oracle request failed",
		Cause:      cause,
		StatusCode: statusCode,
		Body:       body,
	}
}
