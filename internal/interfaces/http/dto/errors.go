package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself. Domain errors keep their own codes.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeBodyTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,
	"INVALID_INPUT":   http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,

	ErrCodeForbidden:        http.StatusForbidden,
	"ACCOUNT_LOCKED":        http.StatusForbidden,
	"ACCOUNT_INACTIVE":      http.StatusForbidden,
	"ACCOUNT_DEACTIVATED":   http.StatusForbidden,
	"ORGANIZATION_INACTIVE": http.StatusForbidden,

	ErrCodeNotFound:           http.StatusNotFound,
	"USER_NOT_FOUND":          http.StatusNotFound,
	"RECEIPT_NOT_FOUND":       http.StatusNotFound,
	"TEMPLATE_NOT_FOUND":      http.StatusNotFound,
	"EXCHANGE_RATE_NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_STATE":        http.StatusConflict,
	"ALREADY_ACTIVE":       http.StatusConflict,
	"ALREADY_SUSPENDED":    http.StatusConflict,
	"CUSTOMER_IN_USE":      http.StatusConflict,
	"PRODUCT_IN_USE":       http.StatusConflict,
	"MANAGER_IN_USE":       http.StatusConflict,
	"BASE_CURRENCY_LOCKED": http.StatusConflict,

	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,
	"RECEIPT_TOO_LARGE": http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	"STORAGE_UNAVAILABLE":  http.StatusServiceUnavailable,
	"PROVIDER_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* codes are input errors (400); any other unlisted
// code is a business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}
