// Package apperrors provides structured, HTTP-aware errors for the editor API.
//
// The taxonomy follows the failure classes of the editing backend:
// input validation (user fixable, nothing mutated), media I/O (decode or
// probe failures at the file boundary), remote (upload and catalog calls,
// with an explicit auth-expired variant), and pipeline replay (a step
// failed while rebuilding state from the processing log).
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/logger"
)

// Error is a structured error with HTTP context
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ToGinResponse sends the error as a standardized JSON response
func (e *Error) ToGinResponse(c *gin.Context) {
	statusCode := e.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := gin.H{
		"error": e.Message,
		"code":  e.Code,
	}
	if len(e.Context) > 0 {
		response["details"] = e.Context
	}

	logger.Error("HTTP error response",
		"status", statusCode,
		"code", e.Code,
		"message", e.Message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method)

	c.JSON(statusCode, response)
}

// Common error constructors

func NewValidationError(message string, field string) *Error {
	return &Error{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"field": field},
	}
}

func NewNotFoundError(resource string, id string) *Error {
	return &Error{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
		Context:    map[string]interface{}{"resource": resource, "id": id},
	}
}

func NewMediaError(operation string, cause error) *Error {
	return &Error{
		Code:       "MEDIA_ERROR",
		Message:    "Media operation failed",
		HTTPStatus: http.StatusUnprocessableEntity,
		Context:    map[string]interface{}{"operation": operation},
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *Error {
	return &Error{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewDatabaseError(operation string, cause error) *Error {
	return &Error{
		Code:       "DATABASE_ERROR",
		Message:    "Database operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Context:    map[string]interface{}{"operation": operation},
		Cause:      cause,
	}
}

func NewConflictError(message string) *Error {
	return &Error{
		Code:       "CONFLICT",
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewAuthExpiredError marks a remote call rejected for stale credentials.
// Clients treat this code as a redirect-to-login signal.
func NewAuthExpiredError() *Error {
	return &Error{
		Code:       "AUTH_EXPIRED",
		Message:    "Authentication expired, please sign in again",
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewRemoteError(operation string, detail string, cause error) *Error {
	msg := "Remote operation failed"
	if detail != "" {
		msg = detail
	}
	return &Error{
		Code:       "REMOTE_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadGateway,
		Context:    map[string]interface{}{"operation": operation},
		Cause:      cause,
	}
}

// PartialReplayError reports an undo replay that stopped early. The
// pipeline state reflects only the successfully replayed prefix.
type PartialReplayError struct {
	Applied int
	Total   int
	Cause   error
}

func (e *PartialReplayError) Error() string {
	return fmt.Sprintf("replay aborted after %d of %d steps: %v", e.Applied, e.Total, e.Cause)
}

func (e *PartialReplayError) Unwrap() error {
	return e.Cause
}

// IsAuthExpired reports whether err carries the auth-expired code.
func IsAuthExpired(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == "AUTH_EXPIRED"
	}
	return false
}

// HTTP helpers to eliminate duplicate error handling

func HandleValidationError(c *gin.Context, message string, field string) {
	NewValidationError(message, field).ToGinResponse(c)
}

func HandleNotFound(c *gin.Context, resource string, id string) {
	NewNotFoundError(resource, id).ToGinResponse(c)
}

func HandleInternalError(c *gin.Context, message string, err error) {
	NewInternalError(message, err).ToGinResponse(c)
}

func HandleMediaError(c *gin.Context, operation string, err error) {
	NewMediaError(operation, err).ToGinResponse(c)
}

// HandleError maps an arbitrary error onto the response, preserving
// structured errors and wrapping the rest as internal.
func HandleError(c *gin.Context, err error) {
	var ae *Error
	if errors.As(err, &ae) {
		ae.ToGinResponse(c)
		return
	}
	var pr *PartialReplayError
	if errors.As(err, &pr) {
		(&Error{
			Code:       "REPLAY_INCOMPLETE",
			Message:    pr.Error(),
			HTTPStatus: http.StatusConflict,
			Context:    map[string]interface{}{"applied": pr.Applied, "total": pr.Total},
		}).ToGinResponse(c)
		return
	}
	NewInternalError("Unexpected error", err).ToGinResponse(c)
}
