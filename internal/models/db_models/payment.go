package db_models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentProcess       PaymentStatus = "process"
	PaymentConfirmCheck  PaymentStatus = "confirm_check"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPaidOver      PaymentStatus = "paid_over"
	PaymentFail          PaymentStatus = "fail"
	PaymentWrongAmount   PaymentStatus = "wrong_amount"
	PaymentCancel        PaymentStatus = "cancel"
	PaymentSystemFail    PaymentStatus = "system_fail"
	PaymentRefundProcess PaymentStatus = "refund_process"
	PaymentRefundFail    PaymentStatus = "refund_fail"
	PaymentRefundPaid    PaymentStatus = "refund_paid"
)

func (s PaymentStatus) IsComplete() bool {
	return s == PaymentPaid || s == PaymentPaidOver
}

func (s PaymentStatus) IsFailed() bool {
	switch s {
	case PaymentFail, PaymentWrongAmount, PaymentCancel, PaymentSystemFail:
		return true
	}
	return false
}

// IsFinal reports whether the gateway will not move the invoice any further.
func (s PaymentStatus) IsFinal() bool {
	return s.IsComplete() || s == PaymentFail || s == PaymentCancel
}

type Payment struct {
	BaseModel
	UserID          uuid.UUID        `gorm:"type:uuid;index;not null"`
	OrderID         string           `gorm:"uniqueIndex;not null"`
	Provider        string           `gorm:"index"`
	PlanID          SubscriptionPlan `gorm:"size:16"`
	Amount          float64
	Currency        string `gorm:"size:8"`
	CryptoCurrency  string `gorm:"size:16"`
	CryptoAmount    *float64
	PaymentStatus   PaymentStatus `gorm:"size:32;index"`
	InvoiceUUID     string        `gorm:"index"`
	PaymentURL      string
	PaymentAddress  string
	TransactionHash string
	WebhookReceived bool
	ExpiresAt       *int64
	PaidAt          *int64

	Metadata datatypes.JSON
}

// ProcessedWebhook is the idempotency ledger for gateway callbacks. A unique
// (provider, provider_txn_id) row is written in the same transaction as the
// subscription side effects.
type ProcessedWebhook struct {
	BaseModel
	Provider      string `gorm:"uniqueIndex:idx_processed_webhook;size:32;not null"`
	ProviderTxnID string `gorm:"uniqueIndex:idx_processed_webhook;not null"`
	OrderID       string `gorm:"index"`
	PaymentStatus PaymentStatus
	ProcessedAt   int64
}

type ReferralStatus string

const (
	ReferralPending   ReferralStatus = "pending"
	ReferralCompleted ReferralStatus = "completed"
)

type Referral struct {
	BaseModel
	ReferrerID   uuid.UUID      `gorm:"type:uuid;index;not null"`
	ReferredID   uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	Status       ReferralStatus `gorm:"size:16;default:'pending'"`
	RewardAmount float64
}
