package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
)

type SessionRepository interface {
	Create(ctx context.Context, session *dbm.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.Session, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now int64) (int64, error)
	// RotateRefresh swaps oldHash for newHash on an active session and reports
	// whether the swap happened. A false result means oldHash was already spent.
	RotateRefresh(ctx context.Context, id uuid.UUID, oldHash, newHash string, refreshedAt, expiresAt int64) (bool, error)
	DeactivateByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// FindUsersSharingIP lists other users with a live session from ip.
	FindUsersSharingIP(ctx context.Context, ip string, exclude uuid.UUID, now int64) ([]uuid.UUID, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *dbm.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.Session, error) {
	var session dbm.Session
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&dbm.Session{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&dbm.Session{}, "id = ?", id).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	res := r.db.WithContext(ctx).Unscoped().Where("expires_at <= ?", now).Delete(&dbm.Session{})
	return res.RowsAffected, res.Error
}

func (r *sessionRepository) RotateRefresh(ctx context.Context, id uuid.UUID, oldHash, newHash string, refreshedAt, expiresAt int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&dbm.Session{}).
		Where("id = ? AND is_active = ? AND refresh_token_hash = ?", id, true, oldHash).
		Updates(map[string]interface{}{
			"refresh_token_hash": newHash,
			"last_refreshed_at":  refreshedAt,
			"expires_at":         expiresAt,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *sessionRepository) DeactivateByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&dbm.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *sessionRepository) FindUsersSharingIP(ctx context.Context, ip string, exclude uuid.UUID, now int64) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if ip == "" || ip == "unknown" {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&dbm.Session{}).
		Distinct("user_id").
		Where("ip_address = ? AND user_id <> ? AND is_active = ? AND expires_at > ?", ip, exclude, true, now).
		Pluck("user_id", &ids).Error
	return ids, err
}
