package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to API clients. Each one is a distinct failure kind
// of the circle workflows; INTERNAL_ERROR wraps store failures unchanged.
const (
	CodeUnauthenticated         = "UNAUTHENTICATED"
	CodeNotFound                = "NOT_FOUND"
	CodeForbidden               = "FORBIDDEN"
	CodeValidation              = "VALIDATION_ERROR"
	CodeApplicationsClosed      = "APPLICATIONS_CLOSED"
	CodeDuplicateApplication    = "DUPLICATE_APPLICATION"
	CodeNoChangeRequested       = "NO_CHANGE_REQUESTED"
	CodeInvalidCapacity         = "INVALID_CAPACITY"
	CodeInvalidDuration         = "INVALID_DURATION"
	CodeCapacityBelowEnrollment = "CAPACITY_BELOW_ENROLLMENT"
	CodeCannotReopenCompleted   = "CANNOT_REOPEN_COMPLETED"
	CodeAtCapacity              = "AT_CAPACITY"
	CodeInternal                = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
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

// IsCode reports whether err is an AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func newAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewUnauthenticatedError is returned when no caller identity is available.
func NewUnauthenticatedError() *AppError {
	return newAppError(CodeUnauthenticated, "You must be signed in")
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewForbiddenError(message string) *AppError {
	return newAppError(CodeForbidden, message)
}

func NewValidationError(message string) *AppError {
	return newAppError(CodeValidation, message)
}

func NewApplicationsClosedError() *AppError {
	return newAppError(CodeApplicationsClosed, "This circle is not accepting applications")
}

// NewDuplicateApplicationError names the status of the caller's live
// application so the client can show where they stand.
func NewDuplicateApplicationError(existing ApplicationStatus) *AppError {
	return newAppError(CodeDuplicateApplication,
		fmt.Sprintf("You already have an application for this circle (status: %s)", existing))
}

func NewNoChangeRequestedError() *AppError {
	return newAppError(CodeNoChangeRequested, "Provide a new capacity or a number of weeks to extend by")
}

func NewInvalidCapacityError(current int) *AppError {
	return newAppError(CodeInvalidCapacity,
		fmt.Sprintf("New capacity must be greater than the current capacity (%d)", current))
}

func NewInvalidDurationError(current int) *AppError {
	return newAppError(CodeInvalidDuration,
		fmt.Sprintf("New duration must be longer than the current duration (%d weeks)", current))
}

func NewCapacityLimitError(limit int) *AppError {
	return newAppError(CodeInvalidCapacity, fmt.Sprintf("Capacity cannot exceed %d", limit))
}

func NewDurationLimitError(limit int) *AppError {
	return newAppError(CodeInvalidDuration, fmt.Sprintf("Duration cannot exceed %d weeks", limit))
}

func NewCapacityBelowEnrollmentError(filled int64) *AppError {
	return newAppError(CodeCapacityBelowEnrollment,
		fmt.Sprintf("Capacity cannot be below current enrollment (%d)", filled))
}

func NewCannotReopenCompletedError() *AppError {
	return newAppError(CodeCannotReopenCompleted, "A completed circle cannot be reopened")
}

func NewAtCapacityError() *AppError {
	return newAppError(CodeAtCapacity, "Circle is at capacity; increase capacity before reopening applications")
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
