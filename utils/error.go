package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures surfaced to callers.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindNotFound            ErrorKind = "not_found"
	KindInternal            ErrorKind = "internal"
)

// AppError carries a short diagnostic code and a human-readable message.
// Err is kept for logs and is never rendered to clients.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError names the offending field.
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "invalid_" + field,
		Field:   field,
		Message: message,
	}
}

// NewUpstreamError wraps a failed downstream call.
func NewUpstreamError(op string, err error) *AppError {
	return &AppError{
		Kind:    KindUpstreamUnavailable,
		Code:    "upstream_unavailable",
		Message: fmt.Sprintf("%s is temporarily unavailable, please try again", op),
		Err:     err,
	}
}

// NewNotFoundError reports an absent resource.
func NewNotFoundError(what, id string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    what + "_not_found",
		Message: fmt.Sprintf("%s %q not found", what, id),
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Code:    "internal_error",
					Message: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// RespondError renders err without leaking downstream details.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		GetLogger().Error("unclassified error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "internal_error",
			Message: "An unexpected error occurred. Please try again later.",
		})
		return
	}
	if appErr.Kind == KindUpstreamUnavailable || appErr.Kind == KindInternal {
		GetLogger().Error(appErr.Message, zap.String("code", appErr.Code), zap.Error(appErr.Err))
	} else {
		GetLogger().Warn(appErr.Message, zap.String("code", appErr.Code))
	}
	c.JSON(appErr.HTTPStatus(), ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}
