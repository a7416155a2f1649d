package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a stable string identifier for a failure category. Codes are
// prefixed with the module that owns them (COMMON_, CHEM_).
type ErrorCode string

// String returns the code as a plain string.
func (c ErrorCode) String() string {
	return string(c)
}

// ─────────────────────────────────────────────────────────────────────────────
// Common codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	CodeOK                 ErrorCode = "OK"
	CodeUnknown            ErrorCode = "UNKNOWN"
	CodeInternal           ErrorCode = "COMMON_000"
	CodeBadRequest         ErrorCode = "COMMON_001"
	CodeNotFound           ErrorCode = "COMMON_004"
	CodeTimeout            ErrorCode = "COMMON_008"
	CodeValidation         ErrorCode = "COMMON_009"
	CodeCacheError         ErrorCode = "COMMON_012"
	CodeServiceUnavailable ErrorCode = "COMMON_013"
)

// ─────────────────────────────────────────────────────────────────────────────
// Composition / distance codes
// ─────────────────────────────────────────────────────────────────────────────

const (
	// CodeMalformedFormula is returned when a formula has unbalanced brackets
	// or cannot be tokenised.
	CodeMalformedFormula ErrorCode = "CHEM_001"
	// CodeEmptyComposition is returned when a formula sums to zero atoms.
	CodeEmptyComposition ErrorCode = "CHEM_002"
	// CodeSolverInternal signals a transportation solver invariant breach.
	CodeSolverInternal      ErrorCode = "CHEM_003"
	CodeElementTableInvalid ErrorCode = "CHEM_004"
	CodeCorpusInvalid       ErrorCode = "CHEM_005"
	// CodeInvalidDistribution is returned when solver input carries negative
	// or non-finite masses.
	CodeInvalidDistribution ErrorCode = "CHEM_006"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	CodeOK:                 http.StatusOK,
	CodeInternal:           http.StatusInternalServerError,
	CodeBadRequest:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeCacheError:         http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,

	CodeMalformedFormula:    http.StatusBadRequest,
	CodeEmptyComposition:    http.StatusBadRequest,
	CodeSolverInternal:      http.StatusInternalServerError,
	CodeElementTableInvalid: http.StatusInternalServerError,
	CodeCorpusInvalid:       http.StatusInternalServerError,
	CodeInvalidDistribution: http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	CodeInternal:           "internal server error",
	CodeBadRequest:         "bad request",
	CodeNotFound:           "resource not found",
	CodeTimeout:            "request timeout",
	CodeValidation:         "validation failed",
	CodeCacheError:         "cache error",
	CodeServiceUnavailable: "service unavailable",

	CodeMalformedFormula:    "malformed formula",
	CodeEmptyComposition:    "empty composition",
	CodeSolverInternal:      "transportation solver failed",
	CodeElementTableInvalid: "invalid element table",
	CodeCorpusInvalid:       "invalid corpus",
	CodeInvalidDistribution: "invalid distribution",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
