// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"auth_backend/internal/feature/auth/domain/entity"
)

// UserModel is the GORM model for the users table.
// Sessions are embedded in the row so a user and their devices are written together.
type UserModel struct {
	ID                    string           `gorm:"primaryKey;size:36"`
	Email                 string           `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash          string           `gorm:"size:255;not null"`
	Role                  string           `gorm:"size:32;not null;default:user"`
	IsVerified            bool             `gorm:"not null;default:false"`
	VerificationTokenHash *string          `gorm:"index;size:64"`
	ResetTokenHash        *string          `gorm:"index;size:64"`
	ResetExpiresAt        *time.Time
	FailedAttempts        int              `gorm:"not null;default:0"`
	LockedUntil           *time.Time
	RefreshTokenHash      *string          `gorm:"index;size:64"`
	Sessions              []entity.Session `gorm:"type:text;serializer:json"`
	Version               int64            `gorm:"not null;default:1"`
	CreatedAt             time.Time        `gorm:"not null"`
	UpdatedAt             time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:                    m.ID,
		Email:                 m.Email,
		PasswordHash:          m.PasswordHash,
		Role:                  m.Role,
		IsVerified:            m.IsVerified,
		VerificationTokenHash: m.VerificationTokenHash,
		ResetTokenHash:        m.ResetTokenHash,
		ResetExpiresAt:        m.ResetExpiresAt,
		FailedAttempts:        m.FailedAttempts,
		LockedUntil:           m.LockedUntil,
		RefreshTokenHash:      m.RefreshTokenHash,
		Sessions:              m.Sessions,
		Version:               m.Version,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:                    u.ID,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		Role:                  u.Role,
		IsVerified:            u.IsVerified,
		VerificationTokenHash: u.VerificationTokenHash,
		ResetTokenHash:        u.ResetTokenHash,
		ResetExpiresAt:        u.ResetExpiresAt,
		FailedAttempts:        u.FailedAttempts,
		LockedUntil:           u.LockedUntil,
		RefreshTokenHash:      u.RefreshTokenHash,
		Sessions:              u.Sessions,
		Version:               u.Version,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

// RevokedTokenModel is the GORM model for the revoked_tokens table.
type RevokedTokenModel struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM.
func (RevokedTokenModel) TableName() string {
	return "revoked_tokens"
}

// Models lists every model of the auth feature for AutoMigrate.
func Models() []any {
	return []any{&UserModel{}, &RevokedTokenModel{}}
}
