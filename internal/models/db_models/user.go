package db_models

import "github.com/google/uuid"

type SubscriptionPlan string

const (
	PlanFree      SubscriptionPlan = "free"
	PlanMonthly   SubscriptionPlan = "monthly"
	PlanQuarterly SubscriptionPlan = "quarterly"
	PlanYearly    SubscriptionPlan = "yearly"
	PlanLifetime  SubscriptionPlan = "lifetime"
)

const (
	FreeDailySearchLimit      = 100
	UnlimitedDailySearchLimit = 999999
)

type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	APIKey       string `gorm:"column:api_key;uniqueIndex;not null"`

	TelegramCode        string  `gorm:"uniqueIndex;size:16"`
	TelegramID          *string `gorm:"index"`
	TelegramConnectedAt *int64

	SubscriptionPlan      SubscriptionPlan `gorm:"size:16;default:'free';index"`
	SubscriptionStartedAt *int64
	SubscriptionEndsAt    *int64 // nil = no expiry (free or lifetime)

	DailySearchLimit  int   `gorm:"not null"`
	DailySearchesUsed int   `gorm:"not null;default:0"`
	LastSearchReset   int64 `gorm:"not null;default:0"` // unix seconds, UTC midnight of last reset

	IsActive  bool `gorm:"not null;index"`
	IsBanned  bool `gorm:"not null;default:false;index"`
	BanReason *string

	ReferralCode     string     `gorm:"uniqueIndex;size:32"`
	ReferredBy       *uuid.UUID `gorm:"type:uuid;index"`
	TotalReferrals   int        `gorm:"not null;default:0"`
	ReferralEarnings float64    `gorm:"not null;default:0"`

	RiskScore  int    `gorm:"not null;default:0"`
	BadgeLevel string `gorm:"size:32"`
}
