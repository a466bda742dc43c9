package domain

import "time"

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UID           string     `gorm:"uniqueIndex;size:36;not null" json:"uid"`
	Email         string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username      string     `gorm:"size:255;not null" json:"username"`
	AvatarURL     string     `gorm:"size:1024" json:"avatar_url"`
	AvatarKey     string     `gorm:"size:512" json:"-"`
	Status        string     `gorm:"size:32;not null;default:active;index:idx_users_status" json:"status"`
	EmailVerified bool       `gorm:"not null;default:false" json:"email_verified"`
	GoogleSubID   string     `gorm:"size:255;index" json:"-"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) Active() bool { return u.Status == "active" }
