package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "pka/internal/models/db_models"
)

type SuspiciousFilter struct {
	Page     int
	Limit    int
	Status   string // unresolved | resolved | all
	Severity string
}

type SecurityRepository interface {
	// FindFingerprintOwner returns the first user that reported hash.
	FindFingerprintOwner(ctx context.Context, hash string) (*dbm.DeviceFingerprint, error)
	RecordFingerprint(ctx context.Context, fp *dbm.DeviceFingerprint, seenAt int64) error
	// FindFingerprintUsers lists every other user that reported hash, oldest first.
	FindFingerprintUsers(ctx context.Context, hash string, exclude uuid.UUID) ([]uuid.UUID, error)
	MarkFingerprintsSuspicious(ctx context.Context, hash string, userIDs []uuid.UUID) error
	CountFingerprintsByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// UpsertLink stores the (primary, linked) pair, raising its confidence
	// when the new score is higher. The stored row is returned.
	UpsertLink(ctx context.Context, link *dbm.MultiAccountLink) (*dbm.MultiAccountLink, error)
	FindLinkByID(ctx context.Context, id uuid.UUID) (*dbm.MultiAccountLink, error)
	// FindLinkBetween matches the pair in either direction.
	FindLinkBetween(ctx context.Context, a, b uuid.UUID) (*dbm.MultiAccountLink, error)
	ListLinks(ctx context.Context, minConfidence, page, limit int) ([]dbm.MultiAccountLink, int64, error)
	ReviewLink(ctx context.Context, id uuid.UUID, confirmed bool, reviewedAt int64) error

	CreateSuspicious(ctx context.Context, activity *dbm.SuspiciousActivity) error
	FindOpenSuspicious(ctx context.Context, userID uuid.UUID, activityType string) (*dbm.SuspiciousActivity, error)
	UpdateSuspicious(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ListSuspicious(ctx context.Context, filter SuspiciousFilter) ([]dbm.SuspiciousActivity, int64, error)
	ResolveSuspicious(ctx context.Context, id uuid.UUID, notes string, resolvedAt int64) error
	CountUnresolved(ctx context.Context) (int64, error)
}

type securityRepository struct {
	db *gorm.DB
}

func NewSecurityRepository(db *gorm.DB) SecurityRepository {
	return &securityRepository{db: db}
}

func (r *securityRepository) FindFingerprintOwner(ctx context.Context, hash string) (*dbm.DeviceFingerprint, error) {
	var fp dbm.DeviceFingerprint
	err := r.db.WithContext(ctx).
		Where("fingerprint_hash = ?", hash).
		Order("created_at ASC, id ASC").
		First(&fp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fp, nil
}

func (r *securityRepository) RecordFingerprint(ctx context.Context, fp *dbm.DeviceFingerprint, seenAt int64) error {
	fp.LastSeenAt = seenAt
	if fp.TotalUses == 0 {
		fp.TotalUses = 1
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fingerprint_hash"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_uses":    gorm.Expr("device_fingerprints.total_uses + 1"),
			"last_seen_at":  seenAt,
			"browser_info":  fp.BrowserInfo,
			"screen_info":   fp.ScreenInfo,
			"hardware_info": fp.HardwareInfo,
		}),
	}).Create(fp).Error
}

func (r *securityRepository) FindFingerprintUsers(ctx context.Context, hash string, exclude uuid.UUID) ([]uuid.UUID, error) {
	var rows []dbm.DeviceFingerprint
	err := r.db.WithContext(ctx).
		Select("user_id").
		Where("fingerprint_hash = ? AND user_id <> ?", hash, exclude).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]bool, len(rows))
	for _, row := range rows {
		if !seen[row.UserID] {
			seen[row.UserID] = true
			ids = append(ids, row.UserID)
		}
	}
	return ids, nil
}

func (r *securityRepository) MarkFingerprintsSuspicious(ctx context.Context, hash string, userIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&dbm.DeviceFingerprint{}).
		Where("fingerprint_hash = ? AND user_id IN ?", hash, userIDs).
		Update("is_suspicious", true).Error
}

func (r *securityRepository) CountFingerprintsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.DeviceFingerprint{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *securityRepository) findLink(tx *gorm.DB, primary, linked uuid.UUID) (*dbm.MultiAccountLink, error) {
	var link dbm.MultiAccountLink
	err := tx.Where("primary_user_id = ? AND linked_user_id = ?", primary, linked).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *securityRepository) UpsertLink(ctx context.Context, link *dbm.MultiAccountLink) (*dbm.MultiAccountLink, error) {
	db := r.db.WithContext(ctx)

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "primary_user_id"}, {Name: "linked_user_id"}},
		DoNothing: true,
	}).Create(link)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return link, nil
	}

	// Conditional update keeps the score monotonic under concurrent detections.
	if err := db.Model(&dbm.MultiAccountLink{}).
		Where("primary_user_id = ? AND linked_user_id = ? AND confidence_score < ?",
			link.PrimaryUserID, link.LinkedUserID, link.ConfidenceScore).
		Updates(map[string]interface{}{
			"confidence_score": link.ConfidenceScore,
			"link_type":        link.LinkType,
			"evidence":         link.Evidence,
			"detected_at":      link.DetectedAt,
		}).Error; err != nil {
		return nil, err
	}
	return r.findLink(db, link.PrimaryUserID, link.LinkedUserID)
}

func (r *securityRepository) FindLinkByID(ctx context.Context, id uuid.UUID) (*dbm.MultiAccountLink, error) {
	var link dbm.MultiAccountLink
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *securityRepository) FindLinkBetween(ctx context.Context, a, b uuid.UUID) (*dbm.MultiAccountLink, error) {
	var link dbm.MultiAccountLink
	err := r.db.WithContext(ctx).
		Where("(primary_user_id = ? AND linked_user_id = ?) OR (primary_user_id = ? AND linked_user_id = ?)", a, b, b, a).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

func (r *securityRepository) ListLinks(ctx context.Context, minConfidence, page, limit int) ([]dbm.MultiAccountLink, int64, error) {
	q := r.db.WithContext(ctx).Model(&dbm.MultiAccountLink{}).Where("confidence_score >= ?", minConfidence)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var links []dbm.MultiAccountLink
	err := q.Order("confidence_score DESC, detected_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&links).Error
	return links, total, err
}

func (r *securityRepository) ReviewLink(ctx context.Context, id uuid.UUID, confirmed bool, reviewedAt int64) error {
	return r.db.WithContext(ctx).
		Model(&dbm.MultiAccountLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_confirmed": confirmed,
			"reviewed_at":  reviewedAt,
		}).Error
}

func (r *securityRepository) CreateSuspicious(ctx context.Context, activity *dbm.SuspiciousActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *securityRepository) FindOpenSuspicious(ctx context.Context, userID uuid.UUID, activityType string) (*dbm.SuspiciousActivity, error) {
	var activity dbm.SuspiciousActivity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND activity_type = ? AND is_resolved = ?", userID, activityType, false).
		Order("created_at DESC").
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &activity, nil
}

func (r *securityRepository) UpdateSuspicious(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&dbm.SuspiciousActivity{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *securityRepository) ListSuspicious(ctx context.Context, filter SuspiciousFilter) ([]dbm.SuspiciousActivity, int64, error) {
	q := r.db.WithContext(ctx).Model(&dbm.SuspiciousActivity{})
	switch filter.Status {
	case "resolved":
		q = q.Where("is_resolved = ?", true)
	case "all":
	default:
		q = q.Where("is_resolved = ?", false)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []dbm.SuspiciousActivity
	err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *securityRepository) ResolveSuspicious(ctx context.Context, id uuid.UUID, notes string, resolvedAt int64) error {
	res := r.db.WithContext(ctx).
		Model(&dbm.SuspiciousActivity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_resolved":      true,
			"resolved_at":      resolvedAt,
			"resolution_notes": notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *securityRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.SuspiciousActivity{}).Where("is_resolved = ?", false).Count(&n).Error
	return n, err
}
