package db_models

import "github.com/google/uuid"

// Session binds a refresh token hash to a user and device. Rows are soft
// invalidated on logout and deleted once expired.
type Session struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"`
	RefreshTokenHash string    `gorm:"size:64;not null"`
	IPAddress        string    `gorm:"index"`
	UserAgent        string
	ExpiresAt        int64 `gorm:"index;not null"`
	IsActive         bool  `gorm:"not null;index"`
	LastRefreshedAt  *int64
}
