package registries

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

// Repository persists gift registries scoped to a session.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, sessionID string) ([]models.Registry, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.Registry, error)
	Insert(ctx context.Context, registry *models.Registry) error
	UpdateFields(ctx context.Context, sessionID string, id int64, fields map[string]any) error
	Delete(ctx context.Context, sessionID string, id int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, sessionID string) ([]models.Registry, error) {
	var registries []models.Registry
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("event_date ASC, id ASC").
		Find(&registries).Error
	if err != nil {
		return nil, err
	}
	return registries, nil
}

func (r *repository) Get(ctx context.Context, sessionID string, id int64) (*models.Registry, error) {
	var registry models.Registry
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		First(&registry).Error
	if err != nil {
		return nil, err
	}
	return &registry, nil
}

func (r *repository) Insert(ctx context.Context, registry *models.Registry) error {
	return r.db.WithContext(ctx).Create(registry).Error
}

func (r *repository) UpdateFields(ctx context.Context, sessionID string, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Registry{}).
		Where("session_id = ? AND id = ?", sessionID, id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, sessionID string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		Delete(&models.Registry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
