package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/blogforge/content-api/internal/core/domain"
	"github.com/blogforge/content-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, email, password string) (*domain.User, *ports.TokenPair, error)
	loginFn    func(ctx context.Context, username, password string) (*domain.User, *ports.TokenPair, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, email, password string) (*domain.User, *ports.TokenPair, error) {
	return s.registerFn(ctx, username, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.User, *ports.TokenPair, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func newAuthContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, username, email, password string) (*domain.User, *ports.TokenPair, error) {
			if username != "alice" || email != "alice@example.com" {
				t.Fatalf("unexpected args: %s %s", username, email)
			}
			return &domain.User{ID: "u1", Username: username, Email: email, Role: domain.RoleUser},
				&ports.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(`{"username":"alice","email":"alice@example.com","password":"supersecret"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "access" || resp["refresh_token"] != "refresh" {
		t.Fatalf("tokens missing: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatalf("password hash leaked")
	}
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, *ports.TokenPair, error) {
			t.Fatalf("service must not be called for an invalid payload")
			return nil, nil, nil
		},
	}
	h := NewAuthHandler(stub)

	// password below minimum length
	c, _ := newAuthContext(`{"username":"alice","email":"alice@example.com","password":"short"}`)
	err := h.Register(c)
	if _, ok := domain.AsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, string, string, string) (*domain.User, *ports.TokenPair, error) {
			return nil, nil, domain.ErrUsernameTaken
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newAuthContext(`{"username":"alice","email":"alice@example.com","password":"supersecret"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*domain.User, *ports.TokenPair, error) {
			return nil, nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newAuthContext(`{"username":"alice","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token string) (*ports.TokenPair, error) {
			if token != "refresh-token" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &ports.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(`{"refresh_token":"refresh-token"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "new-access" {
		t.Fatalf("unexpected pair: %+v", resp)
	}
}
