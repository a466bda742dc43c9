package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/http/middleware"
	"github.com/lumenshare/backend/internal/security"
	"github.com/lumenshare/backend/internal/service"
)

type stubAuthService struct {
	registerFn    func(email, username, password string) (*service.LoginResult, error)
	loginFn       func(email, password string) (*service.LoginResult, error)
	logoutFn      func(email string) error
	changePassFn  func(userID uint, current, next string) error
	googleURL     string
	googleLoginFn func(code string) (*service.LoginResult, error)
}

func (s *stubAuthService) GoogleLoginURL(string) string { return s.googleURL }

func (s *stubAuthService) LoginWithGoogleCode(_ context.Context, code string) (*service.LoginResult, error) {
	if s.googleLoginFn != nil {
		return s.googleLoginFn(code)
	}
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) RegisterLocal(_ context.Context, email, username, password string) (*service.LoginResult, error) {
	if s.registerFn != nil {
		return s.registerFn(email, username, password)
	}
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) LoginWithPassword(_ context.Context, email, password string) (*service.LoginResult, error) {
	if s.loginFn != nil {
		return s.loginFn(email, password)
	}
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) ChangePassword(_ context.Context, userID uint, current, next string) error {
	if s.changePassFn != nil {
		return s.changePassFn(userID, current, next)
	}
	return errors.New("not implemented")
}

func (s *stubAuthService) Logout(_ context.Context, email string) error {
	if s.logoutFn != nil {
		return s.logoutFn(email)
	}
	return errors.New("not implemented")
}

func newAuthHandlerForTest(svc service.AuthServiceInterface) *AuthHandler {
	cookieMgr := security.NewCookieManager("", false, "lax")
	return NewAuthHandler(svc, cookieMgr, "state-key", time.Hour)
}

func withClaims(r *http.Request, userID, email string) *http.Request {
	claims := &security.Claims{
		Email:            email,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
	ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey, claims)
	return r.WithContext(ctx)
}

func TestAuthHandlerLoginSuccessSetsCookie(t *testing.T) {
	svc := &stubAuthService{loginFn: func(email, password string) (*service.LoginResult, error) {
		if email != "a@example.com" || password != "Secret123" {
			t.Fatalf("unexpected credentials: %s / %s", email, password)
		}
		return &service.LoginResult{
			User:        &domain.User{ID: 1, Email: email},
			AccessToken: "signed-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		}, nil
	}}
	h := newAuthHandlerForTest(svc)

	body := bytes.NewBufferString(`{"email":"a@example.com","password":"Secret123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.AccessToken != "signed-token" || payload.TokenType != "bearer" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	var authCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" {
			authCookie = c
		}
	}
	if authCookie == nil || authCookie.Value != "signed-token" || !authCookie.HttpOnly {
		t.Fatalf("expected httponly access cookie, got %+v", authCookie)
	}
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{loginFn: func(string, string) (*service.LoginResult, error) {
		return nil, service.ErrInvalidCredentials
	}}
	h := newAuthHandlerForTest(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewBufferString(`{"email":"a@example.com","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNAUTHORIZED") {
		t.Fatalf("expected UNAUTHORIZED code in body: %s", rec.Body.String())
	}
}

func TestAuthHandlerLoginInactiveAccount(t *testing.T) {
	svc := &stubAuthService{loginFn: func(string, string) (*service.LoginResult, error) {
		return nil, service.ErrAccountInactive
	}}
	h := newAuthHandlerForTest(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewBufferString(`{"email":"a@example.com","password":"Secret123"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthHandlerLoginBadPayload(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	svc := &stubAuthService{registerFn: func(string, string, string) (*service.LoginResult, error) {
		return nil, service.ErrEmailTaken
	}}
	h := newAuthHandlerForTest(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		bytes.NewBufferString(`{"email":"dupe@example.com","username":"Dupe","password":"Secret123"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandlerRegisterSuccess(t *testing.T) {
	svc := &stubAuthService{registerFn: func(email, username, password string) (*service.LoginResult, error) {
		return &service.LoginResult{
			User:        &domain.User{ID: 7, Email: email, Username: username},
			AccessToken: "fresh-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		}, nil
	}}
	h := newAuthHandlerForTest(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		bytes.NewBufferString(`{"email":"n@example.com","username":"New","password":"Secret123"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	var revoked string
	svc := &stubAuthService{logoutFn: func(email string) error {
		revoked = email
		return nil
	}}
	h := newAuthHandlerForTest(svc)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil), "5", "bye@example.com")
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if revoked != "bye@example.com" {
		t.Fatalf("expected session revoked for bye@example.com, got %q", revoked)
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "access_token" {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatalf("expected cleared access cookie, got %+v", cleared)
	}
}

func TestAuthHandlerLogoutWithoutClaims(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandlerChangePassword(t *testing.T) {
	var gotUser uint
	svc := &stubAuthService{changePassFn: func(userID uint, current, next string) error {
		gotUser = userID
		if current != "OldPass123" || next != "NewPass456" {
			t.Fatalf("unexpected passwords: %s / %s", current, next)
		}
		return nil
	}}
	h := newAuthHandlerForTest(svc)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/api/v1/auth/change-password",
		bytes.NewBufferString(`{"current_password":"OldPass123","new_password":"NewPass456"}`)), "9", "u@example.com")
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUser != 9 {
		t.Fatalf("expected user 9, got %d", gotUser)
	}
}

func TestAuthHandlerGoogleCallbackRejectsBadState(t *testing.T) {
	h := newAuthHandlerForTest(&stubAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "tampered.sig"})
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad state, got %d", rec.Code)
	}
}

func TestAuthHandlerGoogleCallbackSuccess(t *testing.T) {
	svc := &stubAuthService{googleLoginFn: func(code string) (*service.LoginResult, error) {
		if code != "auth-code" {
			t.Fatalf("unexpected code %q", code)
		}
		return &service.LoginResult{
			User:        &domain.User{ID: 3, Email: "g@example.com"},
			AccessToken: "google-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		}, nil
	}}
	h := newAuthHandlerForTest(svc)

	state := "opaque-state"
	signed := security.SignState(state, "state-key")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state="+state+"&code=auth-code", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: signed})
	rec := httptest.NewRecorder()
	h.GoogleCallback(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
