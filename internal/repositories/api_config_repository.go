package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "pka/internal/models/db_models"
)

type ApiConfigRepository interface {
	Create(ctx context.Context, cfg *dbm.ApiConfig) error
	List(ctx context.Context) ([]dbm.ApiConfig, error)
	ListActive(ctx context.Context) ([]dbm.ApiConfig, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dbm.ApiConfig, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type apiConfigRepository struct {
	db *gorm.DB
}

func NewApiConfigRepository(db *gorm.DB) ApiConfigRepository {
	return &apiConfigRepository{db: db}
}

func (r *apiConfigRepository) Create(ctx context.Context, cfg *dbm.ApiConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *apiConfigRepository) List(ctx context.Context) ([]dbm.ApiConfig, error) {
	var configs []dbm.ApiConfig
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&configs).Error
	return configs, err
}

// ListActive keeps insertion order so "first active" is stable.
func (r *apiConfigRepository) ListActive(ctx context.Context) ([]dbm.ApiConfig, error) {
	var configs []dbm.ApiConfig
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&configs).Error
	return configs, err
}

func (r *apiConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*dbm.ApiConfig, error) {
	var cfg dbm.ApiConfig
	err := r.db.WithContext(ctx).First(&cfg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *apiConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&dbm.ApiConfig{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
