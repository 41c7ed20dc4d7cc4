package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "pka/internal/models/db_models"
	"pka/internal/repositories"
)

type BadgeDefinition struct {
	Type        string
	Name        string
	Description string
	Level       int
}

var badgeDefinitions = map[string]BadgeDefinition{
	"newcomer":     {"newcomer", "Newcomer", "Welcome to the platform", 0},
	"verified":     {"verified", "Verified", "Telegram account linked", 1},
	"subscriber":   {"subscriber", "Subscriber", "Active subscription holder", 2},
	"power_user":   {"power_user", "Power User", "Completed 100+ searches", 3},
	"veteran":      {"veteran", "Veteran", "Member for over 6 months", 4},
	"elite":        {"elite", "Elite", "Lifetime subscription holder", 5},
	"referrer":     {"referrer", "Referrer", "Referred 5+ users", 3},
	"top_referrer": {"top_referrer", "Top Referrer", "Referred 25+ users", 5},
	"trusted":      {"trusted", "Trusted", "Low risk score", 4},
}

const (
	referrerThreshold    = 5
	topReferrerThreshold = 25
	trustedRiskCeiling   = 10
	powerUserSearches    = 100
)

type BadgeServiceInterface interface {
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error)
	List(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type BadgeService struct {
	users    repositories.UserRepository
	badges   repositories.BadgeRepository
	activity repositories.ActivityRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewBadgeService(
	users repositories.UserRepository,
	badges repositories.BadgeRepository,
	activity repositories.ActivityRepository,
	logger *zap.Logger,
) *BadgeService {
	return &BadgeService{users: users, badges: badges, activity: activity, logger: logger, now: time.Now}
}

// eligible lists badge types in award order.
func (b *BadgeService) eligible(ctx context.Context, user *dbm.User) ([]string, error) {
	types := []string{"newcomer"}

	if user.TelegramID != nil && *user.TelegramID != "" {
		types = append(types, "verified")
	}
	if user.SubscriptionPlan != "" && user.SubscriptionPlan != dbm.PlanFree {
		types = append(types, "subscriber")
		if user.SubscriptionPlan == dbm.PlanLifetime {
			types = append(types, "elite")
		}
	}
	if user.TotalReferrals >= referrerThreshold {
		types = append(types, "referrer")
	}
	if user.TotalReferrals >= topReferrerThreshold {
		types = append(types, "top_referrer")
	}
	if user.RiskScore <= trustedRiskCeiling {
		types = append(types, "trusted")
	}

	searches, err := b.activity.CountSearchesByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if searches >= powerUserSearches {
		types = append(types, "power_user")
	}

	if time.Unix(user.CreatedAt, 0).Before(b.now().AddDate(0, -6, 0)) {
		types = append(types, "veteran")
	}
	return types, nil
}

func (b *BadgeService) CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := b.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	types, err := b.eligible(ctx, user)
	if err != nil {
		return nil, err
	}

	highest := ""
	for _, t := range types {
		def := badgeDefinitions[t]
		if _, err := b.badges.Award(ctx, &dbm.UserBadge{
			UserID:           userID,
			BadgeType:        def.Type,
			BadgeName:        def.Name,
			BadgeDescription: def.Description,
		}); err != nil {
			return nil, err
		}
		if highest == "" || def.Level > badgeDefinitions[highest].Level {
			highest = t
		}
	}

	if highest != "" && user.BadgeLevel != highest {
		if err := b.users.UpdateFields(ctx, userID, map[string]interface{}{"badge_level": highest}); err != nil {
			return nil, err
		}
	}
	return types, nil
}

func (b *BadgeService) List(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := b.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(rows))
	for _, r := range rows {
		types = append(types, r.BadgeType)
	}
	return types, nil
}

// refreshBadges re-evaluates badges; failures never fail the caller.
func refreshBadges(ctx context.Context, badges BadgeServiceInterface, logger *zap.Logger, userID uuid.UUID) {
	if badges == nil {
		return
	}
	if _, err := badges.CheckAndAward(ctx, userID); err != nil {
		logger.Warn("badge evaluation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
