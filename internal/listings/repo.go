package listings

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

// Repository persists seller listings scoped to a session.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, sessionID string) ([]models.Listing, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.Listing, error)
	Insert(ctx context.Context, listing *models.Listing) error
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

func (r *repository) List(ctx context.Context, sessionID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) Get(ctx context.Context, sessionID string, id int64) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) Insert(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) UpdateFields(ctx context.Context, sessionID string, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
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
		Delete(&models.Listing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
