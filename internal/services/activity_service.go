package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	dbm "pka/internal/models/db_models"
	"pka/internal/repositories"
)

// Activity actions recorded in activity_logs.
const (
	ActionAccountCreated        = "ACCOUNT_CREATED"
	ActionLoginSuccess          = "LOGIN_SUCCESS"
	ActionLoginSuccessAPIKey    = "LOGIN_SUCCESS_APIKEY"
	ActionLoginFailed           = "LOGIN_FAILED"
	ActionLoginBanned           = "LOGIN_ATTEMPT_BANNED"
	ActionLoginInactive         = "LOGIN_ATTEMPT_INACTIVE"
	ActionLogout                = "LOGOUT"
	ActionPasswordUpdated       = "PASSWORD_UPDATED"
	ActionSearchPerformed       = "SEARCH_PERFORMED"
	ActionSearchLimitExceeded   = "SEARCH_LIMIT_EXCEEDED"
	ActionTelegramLinked        = "TELEGRAM_LINKED"
	ActionPaymentCreated        = "PAYMENT_CREATED"
	ActionSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
)

type ActivityEntry struct {
	UserID         *uuid.UUID
	Action         string
	Meta           ClientMeta
	Endpoint       string
	Query          string
	ResponseStatus int
	ResponseTimeMs int64
	Metadata       map[string]interface{}
}

type ActivityServiceInterface interface {
	Log(ctx context.Context, entry ActivityEntry)
}

// ActivityService writes the audit trail. Failures are logged, never returned.
type ActivityService struct {
	repo   repositories.ActivityRepository
	logger *zap.Logger
}

func NewActivityService(repo repositories.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

func (a *ActivityService) Log(ctx context.Context, entry ActivityEntry) {
	var metadata datatypes.JSON
	if len(entry.Metadata) > 0 {
		metadata = toJSON(entry.Metadata)
	}
	row := &dbm.ActivityLog{
		UserID:         entry.UserID,
		Action:         entry.Action,
		IPAddress:      entry.Meta.IP,
		UserAgent:      entry.Meta.UserAgent,
		Endpoint:       entry.Endpoint,
		QueryString:    entry.Query,
		ResponseStatus: entry.ResponseStatus,
		ResponseTimeMs: entry.ResponseTimeMs,
		Metadata:       metadata,
	}
	if err := a.repo.LogActivity(ctx, row); err != nil {
		a.logger.Warn("failed to write activity log", zap.String("action", entry.Action), zap.Error(err))
	}
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func userRef(id uuid.UUID) *uuid.UUID {
	return &id
}
