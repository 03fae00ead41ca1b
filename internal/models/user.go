package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName string    `json:"firstName" gorm:"not null"`
	LastName  string    `json:"lastName" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // bcrypt hash, empty for Google accounts
	IsActive  bool      `json:"isActive" gorm:"not null;default:false"`

	// Bytes across all files the user owns. Never negative.
	StorageUsed int64 `json:"storageUsed" gorm:"not null;default:0"`

	ActivationToken       string     `json:"-"`
	ActivationTokenExpire *time.Time `json:"-"`
	ResetPasswordToken    string     `json:"-"`
	ResetPasswordExpire   *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
