// Package errors provides custom error types for the Cardwise API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Statement parsing errors. These are fatal-input conditions: the whole
// request is rejected with enough detail to fix the file. Individual
// unparsable rows are skipped and counted, never raised.
var (
	ErrUnsupportedFileType = &AppError{Code: "UNSUPPORTED_FILE_TYPE", Message: "Unsupported statement file type", StatusCode: http.StatusBadRequest}
	ErrUnreadableFile      = &AppError{Code: "UNREADABLE_FILE", Message: "Statement file could not be read", StatusCode: http.StatusUnprocessableEntity}
	ErrMissingColumns      = &AppError{Code: "MISSING_COLUMNS", Message: "Could not resolve date, description and amount columns", StatusCode: http.StatusUnprocessableEntity}
	ErrEmptyStatement      = &AppError{Code: "EMPTY_STATEMENT", Message: "No transactions could be extracted from the statement", StatusCode: http.StatusUnprocessableEntity}
	ErrStatementNotFound   = &AppError{Code: "STATEMENT_NOT_FOUND", Message: "Statement not found", StatusCode: http.StatusNotFound}
)

// Card and reward validation errors.
var (
	ErrInvalidCardProfile = &AppError{Code: "INVALID_CARD_PROFILE", Message: "Malformed card profile", StatusCode: http.StatusBadRequest}
	ErrInvalidTransaction = &AppError{Code: "INVALID_TRANSACTION", Message: "Malformed transaction", StatusCode: http.StatusBadRequest}
	ErrNoCandidateCards   = &AppError{Code: "NO_CANDIDATE_CARDS", Message: "At least one candidate card is required", StatusCode: http.StatusBadRequest}
)
