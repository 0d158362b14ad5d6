package dto

import (
	"net/http"

	"github.com/retail/backoffice/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain codes are passed
// through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeTenantRequired  = "TENANT_REQUIRED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	shared.CodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeTenantRequired:   http.StatusBadRequest,

	ErrCodeUnauthorized:    http.StatusUnauthorized,
	shared.CodeNotFound:    http.StatusNotFound,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Conflicts -> 409
	shared.CodeAlreadyExists:          http.StatusConflict,
	shared.CodeConcurrencyConflict:    http.StatusConflict,
	shared.CodeConcurrentModification: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	shared.CodeInvalidState:               http.StatusUnprocessableEntity,
	shared.CodeMissingRequiredAssociation: http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:          http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
