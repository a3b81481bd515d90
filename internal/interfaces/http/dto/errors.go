package dto

import (
	"net/http"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Transport error codes. Domain codes are passed through unchanged.
const (
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnauthorized        = shared.CodeUnauthorized
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeRequestTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeDuplicateSubmission = "DUPLICATE_SUBMISSION"
	ErrCodeUnsupportedFile     = "UNSUPPORTED_FILE"
	ErrCodeNotAvailable        = "NOT_AVAILABLE"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodePartialFailure      = "PARTIAL_FAILURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// malformed input -> 400
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeUnsupportedFile:     http.StatusBadRequest,
	shared.CodeInvalidInput:    http.StatusBadRequest,
	shared.CodeInvalidQuantity: http.StatusBadRequest,

	// auth
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotAvailable:    http.StatusNotFound,
	shared.CodeNotFound:    http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// conflicts -> 409
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeIDSetMismatch:       http.StatusConflict,
	shared.CodeAmbiguousReference:  http.StatusConflict,
	ErrCodeDuplicateSubmission:     http.StatusConflict,

	// state and stock rules -> 422
	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeCodeExhausted:     http.StatusUnprocessableEntity,
	ErrCodePartialFailure:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
