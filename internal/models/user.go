package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	Base
	Email       string `gorm:"type:varchar(254);not null;unique_index:uq_users_email"`
	FirstName   string `gorm:"type:varchar(255);not null"`
	LastName    string `gorm:"type:varchar(255);not null"`
	Password    string `gorm:"type:varchar(128);not null"`
	IsStaff     bool   `gorm:"not null;default:false"`
	IsSuperuser bool   `gorm:"not null;default:false"`
	IsActive    bool   `gorm:"not null"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lowercases the address; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BlacklistedToken records a refresh token revoked on logout.
type BlacklistedToken struct {
	Base
	JTI       string    `gorm:"type:varchar(64);not null;unique_index:uq_blacklisted_tokens_jti"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `gorm:"not null"`
}
