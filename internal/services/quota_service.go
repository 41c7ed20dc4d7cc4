package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	dbm "pka/internal/models/db_models"
	"pka/internal/models/response_models"
	"pka/internal/repositories"
	"pka/pkg/utils"
)

type QuotaServiceInterface interface {
	// CheckDailyLimit consumes one search and reports whether it was allowed.
	CheckDailyLimit(ctx context.Context, userID uuid.UUID) (bool, error)
	Usage(ctx context.Context, userID uuid.UUID) (*response_models.QuotaUsage, error)
}

type QuotaService struct {
	users repositories.UserRepository
	now   func() time.Time
}

func NewQuotaService(users repositories.UserRepository) *QuotaService {
	return &QuotaService{users: users, now: time.Now}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func (q *QuotaService) CheckDailyLimit(ctx context.Context, userID uuid.UUID) (bool, error) {
	allowed, err := q.users.ConsumeDailySearch(ctx, userID, utils.DayStartUnix(q.now()))
	if err != nil {
		return false, err
	}
	if allowed {
		return true, nil
	}

	user, err := q.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, utils.ErrUserNotFound
	}
	return false, nil
}

func (q *QuotaService) Usage(ctx context.Context, userID uuid.UUID) (*response_models.QuotaUsage, error) {
	user, err := q.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}
	usage := quotaView(user, q.now())
	return &usage, nil
}

// quotaView applies a pending day rollover without writing it.
func quotaView(user *dbm.User, now time.Time) response_models.QuotaUsage {
	used := user.DailySearchesUsed
	if user.LastSearchReset < utils.DayStartUnix(now) {
		used = 0
	}
	remaining := user.DailySearchLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return response_models.QuotaUsage{Used: used, Limit: user.DailySearchLimit, Remaining: remaining}
}
