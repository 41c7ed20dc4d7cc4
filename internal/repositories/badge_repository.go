package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "pka/internal/models/db_models"
)

type BadgeRepository interface {
	// Award inserts the badge unless the user already holds it.
	Award(ctx context.Context, badge *dbm.UserBadge) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]dbm.UserBadge, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) Award(ctx context.Context, badge *dbm.UserBadge) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_type"}},
		DoNothing: true,
	}).Create(badge)
	return res.RowsAffected == 1, res.Error
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]dbm.UserBadge, error) {
	var badges []dbm.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&badges).Error
	return badges, err
}
