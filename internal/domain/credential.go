package domain

import "time"

// LocalCredential stores one password credential per user.
//
// PasswordHash is self-describing: bcrypt values carry their $2a$/$2b$
// prefix, cost and salt; historical MD5 values are bare hex digests and
// need LegacySalt. The two fields are mutually exclusive: a bcrypt hash
// must have LegacySalt nil, an MD5 hash must have it set. The upgrade path
// in AuthService replaces both fields in a single update.
type LocalCredential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	PasswordHash string    `gorm:"size:1024;not null" json:"-"`
	LegacySalt   *string   `gorm:"size:64" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
