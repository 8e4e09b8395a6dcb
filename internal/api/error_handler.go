package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors:
// a message, a categorical error type, and extension metadata carrying a
// timestamp and the exception name. Validation failures additionally carry
// a sorted list of per-field details.
type errorResponse struct {
	Message    string         `json:"message"`
	ErrorType  string         `json:"errorType"`
	Extensions map[string]any `json:"extensions"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the structured error envelope on every failure.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	extensions := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"exception": exceptionName(err),
	}

	// Validation failures carry field-level detail.
	if ve, ok := domain.AsValidationError(err); ok {
		extensions["validationErrors"] = ve.Fields
		return http.StatusBadRequest, errorResponse{
			Message:    "Validation failed. See the 'extensions' field for details.",
			ErrorType:  "VALIDATION",
			Extensions: extensions,
		}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{
			Message:    fmt.Sprintf("%v", he.Message),
			ErrorType:  typeForStatus(he.Code),
			Extensions: extensions,
		}
	}

	// Known domain errors map to deterministic codes.
	switch {
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{
			Message:    err.Error(),
			ErrorType:  "UNAUTHORIZED",
			Extensions: extensions,
		}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{
			Message:    "Access denied: you do not have the required permissions for this operation.",
			ErrorType:  "FORBIDDEN",
			Extensions: extensions,
		}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound, errorResponse{
			Message:    err.Error(),
			ErrorType:  "NOT_FOUND",
			Extensions: extensions,
		}
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, errorResponse{
			Message:    err.Error(),
			ErrorType:  "CONFLICT",
			Extensions: extensions,
		}
	case errors.Is(err, domain.ErrServiceUnavailable):
		// log the wrapped cause, keep it out of the response body
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("backend unavailable")
		return http.StatusServiceUnavailable, errorResponse{
			Message:    domain.ErrServiceUnavailable.Error(),
			ErrorType:  "SERVICE_UNAVAILABLE",
			Extensions: extensions,
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Message:    "An internal server error occurred.",
		ErrorType:  "INTERNAL_ERROR",
		Extensions: extensions,
	}
}

// exceptionName returns a stable, non-leaking name for the failure class.
func exceptionName(err error) string {
	if _, ok := domain.AsValidationError(err); ok {
		return "ValidationError"
	}
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "UserNotFound"
	case errors.Is(err, domain.ErrPostNotFound):
		return "PostNotFound"
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
		return "Conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "AccessDenied"
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrInvalidCredentials):
		return "AuthenticationFailed"
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "ServiceUnavailable"
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return "HTTPError"
	}
	return "InternalError"
}

func typeForStatus(code int) string {
	switch {
	case code == http.StatusNotFound:
		return "NOT_FOUND"
	case code == http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case code == http.StatusForbidden:
		return "FORBIDDEN"
	case code >= 400 && code < 500:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}
