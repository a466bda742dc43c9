package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenshare/backend/internal/config"
	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/observability"
	"github.com/lumenshare/backend/internal/repository"
	"github.com/lumenshare/backend/internal/security"
)

var (
	ErrGoogleAuthDisabled = errors.New("google auth is disabled")
	ErrLocalAuthDisabled  = errors.New("local auth is disabled")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

type AuthService struct {
	cfg          *config.Config
	oauthSvc     *OAuthService
	tokenSvc     *TokenService
	userRepo     repository.UserRepository
	credRepo     repository.CredentialRepository
	sessionStore SessionTokenStore
	logger       *slog.Logger
}

type LoginResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"-"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

func NewAuthService(
	cfg *config.Config,
	oauthSvc *OAuthService,
	tokenSvc *TokenService,
	userRepo repository.UserRepository,
	credRepo repository.CredentialRepository,
	sessionStore SessionTokenStore,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		cfg:          cfg,
		oauthSvc:     oauthSvc,
		tokenSvc:     tokenSvc,
		userRepo:     userRepo,
		credRepo:     credRepo,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

func (s *AuthService) RegisterLocal(ctx context.Context, email, username, password string) (*LoginResult, error) {
	if !s.cfg.AuthLocalEnabled {
		return nil, ErrLocalAuthDisabled
	}
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user := &domain.User{
		UID:      uuid.NewString(),
		Email:    email,
		Username: username,
		Status:   "active",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.credRepo.Create(&domain.LocalCredential{UserID: user.ID, PasswordHash: hash}); err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, user, "local")
}

// LoginWithPassword authenticates a local account. Records that still
// carry a first-generation hash are rewritten to the current format on
// the first successful match; a rewrite failure is reported but never
// blocks the login itself.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string) (*LoginResult, error) {
	if !s.cfg.AuthLocalEnabled {
		return nil, ErrLocalAuthDisabled
	}
	email = strings.TrimSpace(strings.ToLower(email))
	cred, err := s.credRepo.FindByEmail(email)
	if err != nil {
		observability.RecordAuthLogin(ctx, "local", "denied")
		return nil, ErrInvalidCredentials
	}

	format, _ := security.ClassifyCredential(cred.PasswordHash, cred.LegacySalt)
	verifyStart := time.Now()
	outcome, err := security.VerifyCredential(cred.PasswordHash, cred.LegacySalt, password)
	observability.RecordPasswordVerifyDuration(ctx, format.String(), time.Since(verifyStart))
	if err != nil {
		s.logger.Warn("credential record unusable",
			slog.Uint64("user_id", uint64(cred.UserID)),
			slog.String("error", err.Error()))
		observability.RecordAuthLogin(ctx, "local", "denied")
		return nil, ErrInvalidCredentials
	}
	if !outcome.Matched {
		observability.RecordAuthLogin(ctx, "local", "denied")
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(cred.UserID)
	if err != nil {
		observability.RecordAuthLogin(ctx, "local", "denied")
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		observability.RecordAuthLogin(ctx, "local", "inactive")
		return nil, ErrAccountInactive
	}

	if outcome.FormatOutdated {
		s.upgradeCredential(ctx, user.ID, password)
	}

	return s.finishLogin(ctx, user, "local")
}

// upgradeCredential rewrites a legacy record with a fresh hash and no
// salt. The plaintext was already proven correct by the caller.
func (s *AuthService) upgradeCredential(ctx context.Context, userID uint, password string) {
	newHash, err := security.HashPassword(password)
	if err != nil {
		s.logger.Error("hash for credential upgrade failed",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
		observability.RecordCredentialUpgrade(ctx, "error")
		return
	}
	if err := s.credRepo.UpgradePassword(userID, newHash); err != nil {
		s.logger.Error("credential upgrade not persisted",
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
		observability.RecordCredentialUpgrade(ctx, "error")
		return
	}
	s.logger.Info("credential upgraded to current hash format",
		slog.Uint64("user_id", uint64(userID)))
	observability.RecordCredentialUpgrade(ctx, "success")
}

func (s *AuthService) finishLogin(ctx context.Context, user *domain.User, provider string) (*LoginResult, error) {
	now := time.Now().UTC()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err != nil {
		s.logger.Warn("last login timestamp not updated",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()))
	} else {
		user.LastLoginAt = &now
	}

	access, expiresAt, err := s.tokenSvc.Issue(user)
	if err != nil {
		observability.RecordAuthLogin(ctx, provider, "error")
		return nil, err
	}

	if err := s.sessionStore.Record(ctx, user.Email, access, s.tokenSvc.AccessTTL()); err != nil {
		s.logger.Warn("session token not cached",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()))
		observability.RecordSessionCacheWrite(ctx, "error")
	} else {
		observability.RecordSessionCacheWrite(ctx, "success")
	}

	observability.RecordAuthLogin(ctx, provider, "success")
	return &LoginResult{User: user, AccessToken: access, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Logout(ctx context.Context, email string) error {
	return s.sessionStore.Revoke(ctx, email)
}

// ChangePassword replaces the password for an authenticated account
// after re-checking the current one. Logging in again afterwards is the
// caller's concern; the cached session token stays valid until expiry.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if !s.cfg.AuthLocalEnabled {
		return ErrLocalAuthDisabled
	}
	if err := validatePassword(next); err != nil {
		return err
	}
	cred, err := s.credRepo.FindByUserID(userID)
	if err != nil {
		return ErrInvalidCredentials
	}
	outcome, err := security.VerifyCredential(cred.PasswordHash, cred.LegacySalt, current)
	if err != nil || !outcome.Matched {
		return ErrInvalidCredentials
	}
	newHash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	if outcome.FormatOutdated {
		return s.credRepo.UpgradePassword(userID, newHash)
	}
	return s.credRepo.UpdatePassword(userID, newHash)
}

func (s *AuthService) GoogleLoginURL(state string) string {
	if !s.cfg.AuthGoogleEnabled {
		return ""
	}
	return s.oauthSvc.LoginURL(state)
}

func (s *AuthService) LoginWithGoogleCode(ctx context.Context, code string) (*LoginResult, error) {
	if !s.cfg.AuthGoogleEnabled {
		return nil, ErrGoogleAuthDisabled
	}
	user, err := s.oauthSvc.HandleGoogleCallback(ctx, code)
	if err != nil {
		observability.RecordAuthLogin(ctx, "google", "error")
		return nil, err
	}
	if !user.Active() {
		observability.RecordAuthLogin(ctx, "google", "inactive")
		return nil, ErrAccountInactive
	}
	return s.finishLogin(ctx, user, "google")
}

// ParseUserID extracts the numeric account ID from a token subject.
func ParseUserID(claims *security.Claims) (uint, error) {
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject")
	}
	return uint(id64), nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return ErrWeakPassword
	}
	if !uppercaseRe.MatchString(password) || !lowercaseRe.MatchString(password) || !digitRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
