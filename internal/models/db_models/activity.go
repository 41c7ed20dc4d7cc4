package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityLog struct {
	BaseModel
	UserID         *uuid.UUID `gorm:"type:uuid;index"`
	Action         string     `gorm:"index"`
	IPAddress      string
	UserAgent      string
	Endpoint       string
	QueryString    string
	ResponseStatus int
	ResponseTimeMs int64
	Metadata       datatypes.JSON
}

type SearchHistory struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;index"`
	Module           string    `gorm:"index"`
	QueryValue       string
	APIUsed          string `gorm:"column:api_used"`
	ResponseStatus   int
	SearchDurationMs int64
	IPAddress        string
	UserAgent        string
}

type AdminAuditLog struct {
	BaseModel
	Action     string `gorm:"index"`
	TargetType string
	TargetID   string `gorm:"index"`
	OldValues  datatypes.JSON
	NewValues  datatypes.JSON
	IPAddress  string
}

type ApiConfig struct {
	BaseModel
	ApiName   string `gorm:"index;not null"`
	ApiURL    string `gorm:"not null"`
	ApiKey    string
	RateLimit int  `gorm:"not null"`
	IsActive  bool `gorm:"not null;index"`
}

type UserBadge struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_badge;not null"`
	BadgeType        string    `gorm:"uniqueIndex:idx_user_badge;size:32;not null"`
	BadgeName        string
	BadgeDescription string
}
