package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lumenshare/backend/internal/config"
	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/observability"
	"github.com/lumenshare/backend/internal/repository"
)

type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Picture        string
	EmailVerified  bool
}

type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error)
}

type GoogleOAuthProvider struct {
	cfg *oauth2.Config
}

func NewGoogleOAuthProvider(cfg *config.Config) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{cfg: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

func (p *GoogleOAuthProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *GoogleOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.cfg.Exchange(ctx, code)
}

func (p *GoogleOAuthProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*OAuthUserInfo, error) {
	client := p.cfg.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://openidconnect.googleapis.com/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status: %d", resp.StatusCode)
	}
	var body struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Sub == "" || body.Email == "" {
		return nil, fmt.Errorf("missing required userinfo fields")
	}
	return &OAuthUserInfo{
		ProviderUserID: body.Sub,
		Email:          strings.ToLower(body.Email),
		Name:           body.Name,
		Picture:        body.Picture,
		EmailVerified:  body.EmailVerified,
	}, nil
}

type OAuthService struct {
	provider OAuthProvider
	userRepo repository.UserRepository
}

func NewOAuthService(provider OAuthProvider, userRepo repository.UserRepository) *OAuthService {
	return &OAuthService{provider: provider, userRepo: userRepo}
}

func (s *OAuthService) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// HandleGoogleCallback exchanges the authorization code and upserts the
// matching account. Accounts are linked by provider subject first, then
// by verified email address.
func (s *OAuthService) HandleGoogleCallback(ctx context.Context, code string) (*domain.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	exchangeStart := time.Now()
	token, err := s.provider.Exchange(ctx, code)
	observability.RecordAuthRequestDuration(ctx, "google_exchange", oauthStatus(err), time.Since(exchangeStart))
	if err != nil {
		return nil, err
	}
	userInfoStart := time.Now()
	info, err := s.provider.FetchUserInfo(ctx, token)
	observability.RecordAuthRequestDuration(ctx, "google_userinfo", oauthStatus(err), time.Since(userInfoStart))
	if err != nil {
		return nil, err
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("google email not verified")
	}

	user, err := s.userRepo.FindByGoogleSubID(info.ProviderUserID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrUserNotFound):
		user, err = s.userRepo.FindByEmail(info.Email)
		switch {
		case err == nil:
			user.GoogleSubID = info.ProviderUserID
		case errors.Is(err, repository.ErrUserNotFound):
			user = &domain.User{
				UID:           uuid.NewString(),
				Email:         info.Email,
				Username:      info.Name,
				AvatarURL:     info.Picture,
				Status:        "active",
				EmailVerified: true,
				GoogleSubID:   info.ProviderUserID,
			}
			if err := s.userRepo.Create(user); err != nil {
				return nil, err
			}
			return user, nil
		default:
			return nil, err
		}
	default:
		return nil, err
	}

	user.EmailVerified = true
	if user.AvatarURL == "" {
		user.AvatarURL = info.Picture
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func oauthStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
