package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
)

type ActivityFilter struct {
	Page   int
	Limit  int
	UserID *uuid.UUID
	Action string
	From   int64
	To     int64
}

type ActivityRepository interface {
	LogActivity(ctx context.Context, entry *dbm.ActivityLog) error
	ListActivity(ctx context.Context, filter ActivityFilter) ([]dbm.ActivityLog, int64, error)

	RecordSearch(ctx context.Context, entry *dbm.SearchHistory) error
	CountSearches(ctx context.Context, since int64) (int64, error)
	CountSearchesByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// SearchTimestamps returns created_at of every search since the given time.
	SearchTimestamps(ctx context.Context, since int64) ([]int64, error)

	Audit(ctx context.Context, entry *dbm.AdminAuditLog) error
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) LogActivity(ctx context.Context, entry *dbm.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) ListActivity(ctx context.Context, filter ActivityFilter) ([]dbm.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&dbm.ActivityLog{})
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		q = q.Where("LOWER(action) LIKE LOWER(?)", "%"+filter.Action+"%")
	}
	if filter.From > 0 {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To > 0 {
		q = q.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []dbm.ActivityLog
	err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&logs).Error
	return logs, total, err
}

func (r *activityRepository) RecordSearch(ctx context.Context, entry *dbm.SearchHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) CountSearches(ctx context.Context, since int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.SearchHistory{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *activityRepository) CountSearchesByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.SearchHistory{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *activityRepository) SearchTimestamps(ctx context.Context, since int64) ([]int64, error) {
	var ts []int64
	err := r.db.WithContext(ctx).
		Model(&dbm.SearchHistory{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &ts).Error
	return ts, err
}

func (r *activityRepository) Audit(ctx context.Context, entry *dbm.AdminAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
