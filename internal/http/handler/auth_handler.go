package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lumenshare/backend/internal/http/middleware"
	"github.com/lumenshare/backend/internal/http/response"
	"github.com/lumenshare/backend/internal/observability"
	"github.com/lumenshare/backend/internal/security"
	"github.com/lumenshare/backend/internal/service"
)

type AuthHandler struct {
	authSvc   service.AuthServiceInterface
	cookieMgr *security.CookieManager
	stateKey  string
	accessTTL time.Duration
}

func NewAuthHandler(authSvc service.AuthServiceInterface, cookieMgr *security.CookieManager, stateKey string, accessTTL time.Duration) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cookieMgr: cookieMgr, stateKey: stateKey, accessTTL: accessTTL}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := h.authSvc.RegisterLocal(r.Context(), body.Email, body.Username, body.Password)
	if err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrLocalAuthDisabled):
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		case errors.Is(err, service.ErrEmailTaken):
			response.Error(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
		case errors.Is(err, service.ErrWeakPassword):
			response.Error(w, r, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), nil)
		default:
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		}
		return
	}
	h.cookieMgr.SetAccessCookie(w, result.AccessToken, h.accessTTL)
	observability.Audit(r, "auth.register.success", "user_id", result.User.ID)
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"user":         result.User,
		"access_token": result.AccessToken,
		"token_type":   "bearer",
		"expires_at":   result.ExpiresAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	result, err := h.authSvc.LoginWithPassword(r.Context(), body.Email, body.Password)
	if err != nil {
		status = "failure"
		switch {
		case errors.Is(err, service.ErrLocalAuthDisabled):
			response.Error(w, r, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		case errors.Is(err, service.ErrAccountInactive):
			observability.Audit(r, "auth.login.denied", "reason", "inactive")
			response.Error(w, r, http.StatusForbidden, "ACCOUNT_INACTIVE", err.Error(), nil)
		default:
			observability.Audit(r, "auth.login.denied", "reason", "invalid_credentials")
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
		}
		return
	}
	h.cookieMgr.SetAccessCookie(w, result.AccessToken, h.accessTTL)
	observability.Audit(r, "auth.login.success", "user_id", result.User.ID, "provider", "local")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":         result.User,
		"access_token": result.AccessToken,
		"token_type":   "bearer",
		"expires_at":   result.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	if err := h.authSvc.Logout(r.Context(), claims.Email); err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to end session", nil)
		return
	}
	h.cookieMgr.ClearAccessCookie(w)
	observability.Audit(r, "auth.logout.success", "subject", claims.Subject)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	userID, err := service.ParseUserID(claims)
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid subject", nil)
		return
	}
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.authSvc.ChangePassword(r.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			response.Error(w, r, http.StatusBadRequest, "WEAK_PASSWORD", err.Error(), nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to change password", nil)
		}
		return
	}
	observability.Audit(r, "auth.password.changed", "user_id", userID)
	response.JSON(w, r, http.StatusOK, map[string]string{"status": "password_changed"})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := security.NewRandomString(24)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to generate oauth state", nil)
		return
	}
	signed := security.SignState(state, h.stateKey)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    signed,
		Path:     "/api/v1/auth/google",
		HttpOnly: true,
		Secure:   h.cookieMgr.Secure,
		SameSite: h.cookieMgr.SameSite,
		Domain:   h.cookieMgr.Domain,
		MaxAge:   300,
	})
	url := h.authSvc.GoogleLoginURL(state)
	if url == "" {
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "google auth is disabled", nil)
		return
	}
	observability.Audit(r, "auth.google.login.redirect")
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "google_callback", status, time.Since(start))
	}()

	queryState := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if queryState == "" || code == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing state or code", nil)
		return
	}
	stateCookie := security.GetCookie(r, "oauth_state")
	state, ok := security.VerifySignedState(stateCookie, h.stateKey)
	if !ok || state != queryState {
		status = "failure"
		observability.Audit(r, "auth.google.callback.failed", "reason", "invalid_state")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid oauth state", nil)
		return
	}
	// One-time state, drop the cookie as soon as it checks out.
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/api/v1/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieMgr.Secure,
		SameSite: h.cookieMgr.SameSite,
		Domain:   h.cookieMgr.Domain,
	})

	result, err := h.authSvc.LoginWithGoogleCode(r.Context(), code)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.google.callback.failed", "reason", "oauth_exchange", "error", err.Error())
		response.Error(w, r, http.StatusUnauthorized, "OAUTH_FAILED", err.Error(), nil)
		return
	}
	h.cookieMgr.SetAccessCookie(w, result.AccessToken, h.accessTTL)
	observability.Audit(r, "auth.login.success", "user_id", result.User.ID, "provider", "google")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":         result.User,
		"access_token": result.AccessToken,
		"token_type":   "bearer",
		"expires_at":   result.ExpiresAt,
	})
}
