package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type SuspiciousActivity struct {
	BaseModel
	UserID          uuid.UUID `gorm:"type:uuid;index"`
	ActivityType    string    `gorm:"index"`
	Severity        Severity  `gorm:"size:16;index"`
	Description     string
	IPAddress       string
	Metadata        datatypes.JSON
	IsResolved      bool `gorm:"not null;default:false;index"`
	ResolvedAt      *int64
	ResolutionNotes *string
}

type LinkType string

const (
	LinkSameDevice LinkType = "same_device"
	LinkSameIP     LinkType = "same_ip"
)

const (
	ConfidenceFingerprintMatch = 80
	ConfidenceSharedIP         = 60
)

type MultiAccountLink struct {
	BaseModel
	PrimaryUserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_account_link_pair;not null"`
	LinkedUserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_account_link_pair;not null"`
	LinkType        LinkType  `gorm:"size:16"`
	ConfidenceScore int       `gorm:"index"`
	Evidence        datatypes.JSON
	DetectedAt      int64
	ReviewedAt      *int64
	IsConfirmed     *bool
}

// DeviceFingerprint is one user's sighting of a device hash.
type DeviceFingerprint struct {
	BaseModel
	FingerprintHash string    `gorm:"uniqueIndex:idx_fingerprint_user;size:64;not null"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_fingerprint_user;not null"`
	BrowserInfo     datatypes.JSON
	ScreenInfo      datatypes.JSON
	HardwareInfo    datatypes.JSON
	Timezone        string
	Platform        string
	TotalUses       int `gorm:"not null;default:1"`
	LastSeenAt      int64
	IsSuspicious    bool `gorm:"not null;default:false"`
}
