package auth

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is an account. Emails are stored lower-cased so lookups and the
// unique index agree on case.
type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:320;not null"`
	Name         *string   `gorm:"size:256"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) BeforeSave(*gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Name != nil {
		n := strings.TrimSpace(*u.Name)
		if n == "" {
			u.Name = nil
		} else {
			u.Name = &n
		}
	}
	return nil
}
