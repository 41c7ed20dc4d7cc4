package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
)

type UserStatusFilter string

const (
	UserStatusAll      UserStatusFilter = "all"
	UserStatusActive   UserStatusFilter = "active"
	UserStatusBanned   UserStatusFilter = "banned"
	UserStatusInactive UserStatusFilter = "inactive"
)

type UserListFilter struct {
	Page      int
	Limit     int
	Search    string
	Status    UserStatusFilter
	SortBy    string
	SortOrder string
}

// sortable columns accepted from the admin users list.
var userSortColumns = map[string]string{
	"created_at":          "created_at",
	"username":            "username",
	"subscription_plan":   "subscription_plan",
	"daily_searches_used": "daily_searches_used",
	"total_referrals":     "total_referrals",
	"risk_score":          "risk_score",
}

type UserRepository interface {
	Create(ctx context.Context, user *dbm.User) error
	CreateWithReferral(ctx context.Context, user *dbm.User, referrer *dbm.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]dbm.User, error)
	FindByUsername(ctx context.Context, username string) (*dbm.User, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*dbm.User, error)
	FindByReferralCode(ctx context.Context, code string) (*dbm.User, error)
	FindByTelegramCode(ctx context.Context, code string) (*dbm.User, error)
	FindByTelegramID(ctx context.Context, telegramID string) (*dbm.User, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateFieldsBulk(ctx context.Context, ids []uuid.UUID, fields map[string]interface{}) (int64, error)

	// ConsumeDailySearch resets the daily counter when dayStart is newer than
	// the stored reset, then takes one search if the user is under the limit.
	ConsumeDailySearch(ctx context.Context, id uuid.UUID, dayStart int64) (bool, error)

	List(ctx context.Context, filter UserListFilter) ([]dbm.User, int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status UserStatusFilter) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *dbm.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) CreateWithReferral(ctx context.Context, user *dbm.User, referrer *dbm.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if referrer == nil {
			return nil
		}
		if err := tx.Model(&dbm.User{}).
			Where("id = ?", referrer.ID).
			UpdateColumn("total_referrals", gorm.Expr("total_referrals + 1")).Error; err != nil {
			return err
		}
		return tx.Create(&dbm.Referral{
			ReferrerID: referrer.ID,
			ReferredID: user.ID,
			Status:     dbm.ReferralPending,
		}).Error
	})
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*dbm.User, error) {
	var user dbm.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]dbm.User, error) {
	var users []dbm.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*dbm.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindByAPIKey(ctx context.Context, apiKey string) (*dbm.User, error) {
	return r.findOne(ctx, "api_key = ?", apiKey)
}

func (r *userRepository) FindByReferralCode(ctx context.Context, code string) (*dbm.User, error) {
	return r.findOne(ctx, "referral_code = ?", code)
}

func (r *userRepository) FindByTelegramCode(ctx context.Context, code string) (*dbm.User, error) {
	return r.findOne(ctx, "telegram_code = ?", code)
}

func (r *userRepository) FindByTelegramID(ctx context.Context, telegramID string) (*dbm.User, error) {
	return r.findOne(ctx, "telegram_id = ?", telegramID)
}

func (r *userRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&dbm.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) UpdateFieldsBulk(ctx context.Context, ids []uuid.UUID, fields map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&dbm.User{}).Where("id IN ?", ids).Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *userRepository) ConsumeDailySearch(ctx context.Context, id uuid.UUID, dayStart int64) (bool, error) {
	db := r.db.WithContext(ctx)

	if err := db.Model(&dbm.User{}).
		Where("id = ? AND last_search_reset < ?", id, dayStart).
		UpdateColumns(map[string]interface{}{
			"daily_searches_used": 0,
			"last_search_reset":   dayStart,
		}).Error; err != nil {
		return false, err
	}

	res := db.Model(&dbm.User{}).
		Where("id = ? AND daily_searches_used < daily_search_limit", id).
		UpdateColumn("daily_searches_used", gorm.Expr("daily_searches_used + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func applyStatusFilter(q *gorm.DB, status UserStatusFilter) *gorm.DB {
	switch status {
	case UserStatusActive:
		return q.Where("is_active = ? AND is_banned = ?", true, false)
	case UserStatusBanned:
		return q.Where("is_banned = ?", true)
	case UserStatusInactive:
		return q.Where("is_active = ?", false)
	}
	return q
}

func (r *userRepository) List(ctx context.Context, filter UserListFilter) ([]dbm.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&dbm.User{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(referral_code) LIKE ?", like, like)
	}
	q = applyStatusFilter(q, filter.Status)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := userSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	var users []dbm.User
	err := q.Order(column + " " + direction).
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.User{}).Count(&n).Error
	return n, err
}

func (r *userRepository) CountByStatus(ctx context.Context, status UserStatusFilter) (int64, error) {
	var n int64
	err := applyStatusFilter(r.db.WithContext(ctx).Model(&dbm.User{}), status).Count(&n).Error
	return n, err
}
