package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the basic identity of the system.
type User struct {
	gorm.Model
	Name     string                      `gorm:"type:varchar(50);not null"`
	Email    string                      `gorm:"uniqueIndex;type:varchar(254);not null"`
	Password string                      `gorm:"type:varchar(128);not null"`
	Role     Role                        `gorm:"type:varchar(16);not null;default:'member'"`
	Avatar   string                      `gorm:"type:varchar(512)"`
	Bio      string                      `gorm:"type:text"`
	Skills   datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	// Password reset flow. The token column stores a sha256 hex digest, the
	// plain token only ever leaves the server inside the reset mail.
	ResetPasswordToken  *string    `gorm:"type:varchar(64)"`
	ResetPasswordExpire *time.Time `gorm:""`
}

const bcryptCost = 10

// SetPassword replaces the stored credential with a bcrypt hash of plain.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// ComparePassword reports whether plain matches the stored hash.
func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// BeforeSave keeps the email uniqueness check case-insensitive.
func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}
