package database

import (
	"gorm.io/gorm"

	"github.com/lumenshare/backend/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.LocalCredential{},
		&domain.Item{},
	)
}
