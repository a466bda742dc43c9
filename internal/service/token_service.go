package service

import (
	"time"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/security"
)

type TokenService struct {
	jwtMgr    *security.JWTManager
	accessTTL time.Duration
}

func NewTokenService(jwtMgr *security.JWTManager, accessTTL time.Duration) *TokenService {
	return &TokenService{jwtMgr: jwtMgr, accessTTL: accessTTL}
}

// Issue signs a bearer token for the user. The returned expiry matches
// the lifetime the session cache uses for the same login.
func (s *TokenService) Issue(user *domain.User) (access string, expiresAt time.Time, err error) {
	access, err = s.jwtMgr.SignAccessToken(user.ID, user.Email, s.accessTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return access, time.Now().Add(s.accessTTL), nil
}

func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

func (s *TokenService) Parse(raw string) (*security.Claims, error) {
	return s.jwtMgr.ParseAccessToken(raw)
}
