package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blogforge/content-api/internal/core/domain"
)

func render(t *testing.T, err error) (int, errorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not the error envelope: %v", err)
	}
	return rec.Code, resp
}

func TestErrorHandler_ValidationError(t *testing.T) {
	err := domain.NewValidationError(
		domain.FieldError{Field: "title", Message: "too short"},
		domain.FieldError{Field: "content", Message: "too short"},
	)

	code, resp := render(t, err)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if resp.ErrorType != "VALIDATION" {
		t.Fatalf("expected VALIDATION, got %s", resp.ErrorType)
	}

	raw, ok := resp.Extensions["validationErrors"]
	if !ok {
		t.Fatalf("validationErrors missing from extensions")
	}
	entries, ok := raw.([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 validation entries, got %v", raw)
	}
	// entries come back sorted by field
	first := entries[0].(map[string]any)
	if first["field"] != "content" {
		t.Fatalf("entries not sorted by field: %v", entries)
	}
}

func TestErrorHandler_NotFound(t *testing.T) {
	code, resp := render(t, domain.ErrPostNotFound)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if resp.ErrorType != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", resp.ErrorType)
	}
	if resp.Extensions["exception"] != "PostNotFound" {
		t.Fatalf("unexpected exception name: %v", resp.Extensions["exception"])
	}
}

func TestErrorHandler_Forbidden(t *testing.T) {
	code, resp := render(t, domain.ErrForbidden)
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
	if resp.ErrorType != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN, got %s", resp.ErrorType)
	}
}

func TestErrorHandler_Unauthorized(t *testing.T) {
	for _, err := range []error{
		domain.ErrUnauthenticated,
		domain.ErrTokenExpired,
		domain.ErrTokenInvalid,
		domain.ErrInvalidCredentials,
	} {
		code, resp := render(t, err)
		if code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", err, code)
		}
		if resp.ErrorType != "UNAUTHORIZED" {
			t.Fatalf("%v: expected UNAUTHORIZED, got %s", err, resp.ErrorType)
		}
	}
}

func TestErrorHandler_Conflict(t *testing.T) {
	code, resp := render(t, domain.ErrUsernameTaken)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
	if resp.ErrorType != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", resp.ErrorType)
	}
}

func TestErrorHandler_ServiceUnavailableHidesCause(t *testing.T) {
	wrapped := fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, errors.New("dial tcp 10.0.0.7:27017: i/o timeout"))
	code, resp := render(t, wrapped)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.ErrorType != "SERVICE_UNAVAILABLE" {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %s", resp.ErrorType)
	}
	if resp.Message != domain.ErrServiceUnavailable.Error() {
		t.Fatalf("cause leaked into response: %q", resp.Message)
	}
}

func TestErrorHandler_UnexpectedErrorIsOpaque(t *testing.T) {
	code, resp := render(t, errors.New("pq: connection refused on 10.0.0.5"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if resp.Message != "An internal server error occurred." {
		t.Fatalf("internal details leaked: %q", resp.Message)
	}
	if resp.ErrorType != "INTERNAL_ERROR" {
		t.Fatalf("expected INTERNAL_ERROR, got %s", resp.ErrorType)
	}
}

func TestErrorHandler_TimestampIsRFC3339(t *testing.T) {
	_, resp := render(t, domain.ErrUserNotFound)
	ts, ok := resp.Extensions["timestamp"].(string)
	if !ok {
		t.Fatalf("timestamp missing")
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", ts)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	code, resp := render(t, echo.NewHTTPError(http.StatusNotFound, "route not found"))
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if resp.ErrorType != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", resp.ErrorType)
	}
}
