package errors

import (
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Error codes returned in response bodies.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUnprocessable    = "UNPROCESSABLE_ENTITY"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIError is the error type every handler and service returns.
// Status and Internal are for the error-handler middleware; only
// Code, Message and Details reach the client.
type APIError struct {
	Status   int         `json:"-"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Internal error       `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Internal
}

func New(status int, code, message string, err error) *APIError {
	return &APIError{
		Status:   status,
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, CodeBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return New(http.StatusForbidden, CodeForbidden, message, err)
}

func NotFound(message string, err error) *APIError {
	return New(http.StatusNotFound, CodeNotFound, message, err)
}

func Conflict(message string, err error) *APIError {
	return New(http.StatusConflict, CodeConflict, message, err)
}

func UnprocessableEntity(message string, err error) *APIError {
	return New(http.StatusUnprocessableEntity, CodeUnprocessable, message, err)
}

func Internal(err error) *APIError {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error", err)
}

// NewValidationError wraps a gin binding failure. Field-level messages are
// included when the underlying error is from the validator.
func NewValidationError(err error) *APIError {
	apiErr := New(http.StatusUnprocessableEntity, CodeValidationFailed, "Validation failed", err)

	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		apiErr.Details = details
	}

	return apiErr
}
