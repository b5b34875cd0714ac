package models

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Closed set of failure codes surfaced by the gateway. Every expected failure
// is one of these; anything else is wrapped as CodeInternal at the boundary.
const (
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeNotOwner           = "NOT_OWNER"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeModerationRejected = "MODERATION_REJECTED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code,omitempty"`
	Details     string   `json:"details,omitempty"`
	Reasons     []string `json:"reasons,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
	// Reasons and Suggestions are populated for moderation rejections only.
	Reasons     []string
	Suggestions []string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status for the facade.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNotOwner:
		return http.StatusForbidden
	case CodeModerationRejected:
		return http.StatusUnprocessableEntity
	case CodeUploadFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Predefined error constructors
func NewNotAuthenticatedError() *AppError {
	return &AppError{
		Code:    CodeNotAuthenticated,
		Message: "Not authenticated",
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewNotOwnerError(message string) *AppError {
	return &AppError{
		Code:    CodeNotOwner,
		Message: message,
	}
}

func NewUploadFailedError(err error) *AppError {
	return &AppError{
		Code:    CodeUploadFailed,
		Message: "Image upload failed",
		Err:     err,
	}
}

func NewModerationRejectedError(reasons, suggestions []string) *AppError {
	return &AppError{
		Code:        CodeModerationRejected,
		Message:     "Post rejected by content moderation",
		Reasons:     reasons,
		Suggestions: suggestions,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Unexpected error",
		Err:     err,
	}
}

// AsAppError normalizes any error into an *AppError. Expected failures pass
// through untouched; everything else becomes CodeInternal.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(err)
}

// RespondWithError writes a standardized error response, deriving the HTTP
// status from the error code.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr := AsAppError(err)
	response := ErrorResponse{
		Error:       appErr.Message,
		Code:        appErr.Code,
		Reasons:     appErr.Reasons,
		Suggestions: appErr.Suggestions,
	}
	if appErr.Err != nil && appErr.Code != CodeInternal {
		response.Details = appErr.Err.Error()
	}
	return c.Status(appErr.HTTPStatus()).JSON(response)
}
