package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, sessionID string) ([]models.CartLineItem, error) {
	var items []models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Get(ctx context.Context, sessionID string, id int64) (*models.CartLineItem, error) {
	var item models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindActiveByProduct(ctx context.Context, sessionID string, productID int64) (*models.CartLineItem, error) {
	var item models.CartLineItem
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND product_id = ? AND saved_for_later = ?", sessionID, productID, false).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Insert(ctx context.Context, item *models.CartLineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.CartLineItem) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLineItem{}).
		Where("session_id = ? AND id = ?", item.SessionID, item.ID).
		Updates(map[string]any{
			"quantity":        item.Quantity,
			"saved_for_later": item.SavedForLater,
		}).Error
}

func (r *repository) Delete(ctx context.Context, sessionID string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		Delete(&models.CartLineItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteActive(ctx context.Context, sessionID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("session_id = ? AND saved_for_later = ?", sessionID, false).
		Delete(&models.CartLineItem{})
	return res.RowsAffected, res.Error
}
