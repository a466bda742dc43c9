package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumenshare/backend/internal/domain"
	"github.com/lumenshare/backend/internal/security"
)

// Seed makes sure the bootstrap admin account exists. The account gets
// a random password; operators are expected to reset it through the
// normal flow or sign in with Google on the same address.
func Seed(db *gorm.DB, bootstrapAdminEmail string) error {
	email := strings.TrimSpace(strings.ToLower(bootstrapAdminEmail))
	if email == "" {
		return nil
	}

	var existing domain.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	user := domain.User{
		UID:           uuid.NewString(),
		Email:         email,
		Username:      "admin",
		Status:        "active",
		EmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	password, err := security.NewRandomString(24)
	if err != nil {
		return fmt.Errorf("generate bootstrap password: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	if err := db.Create(&domain.LocalCredential{UserID: user.ID, PasswordHash: hash}).Error; err != nil {
		return fmt.Errorf("create bootstrap credential: %w", err)
	}
	return nil
}

// SetLocalPassword replaces the local credential password for the user
// with the given email. Any legacy salt is cleared so the credential
// ends up in the current format.
func SetLocalPassword(db *gorm.DB, email, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	var user domain.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return fmt.Errorf("look up user %q: %w", email, err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res := db.Model(&domain.LocalCredential{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]any{"password_hash": hash, "legacy_salt": nil})
	if res.Error != nil {
		return fmt.Errorf("update credential: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := db.Create(&domain.LocalCredential{UserID: user.ID, PasswordHash: hash}).Error; err != nil {
			return fmt.Errorf("create credential: %w", err)
		}
	}
	return nil
}
