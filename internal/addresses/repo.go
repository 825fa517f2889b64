package addresses

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

// Repository persists address book entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, sessionID string) ([]models.Address, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.Address, error)
	FindDefault(ctx context.Context, sessionID string) (*models.Address, error)
	Insert(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, addr *models.Address) error
	Delete(ctx context.Context, sessionID string, id int64) error
	ClearDefault(ctx context.Context, sessionID string) error
	MarkDefault(ctx context.Context, sessionID string, id int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, sessionID string) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Get(ctx context.Context, sessionID string, id int64) (*models.Address, error) {
	var row models.Address
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindDefault(ctx context.Context, sessionID string) (*models.Address, error) {
	var row models.Address
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_default = ?", sessionID, true).
		Order("id ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Insert(ctx context.Context, addr *models.Address) error {
	return r.db.WithContext(ctx).Create(addr).Error
}

func (r *repository) Update(ctx context.Context, addr *models.Address) error {
	res := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("session_id = ? AND id = ?", addr.SessionID, addr.ID).
		Updates(map[string]any{
			"name":       addr.Address.Name,
			"street":     addr.Address.Street,
			"city":       addr.Address.City,
			"state":      addr.Address.State,
			"zip":        addr.Address.Zip,
			"is_default": addr.IsDefault,
		})
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
		Delete(&models.Address{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ClearDefault(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("session_id = ? AND is_default = ?", sessionID, true).
		Update("is_default", false).Error
}

func (r *repository) MarkDefault(ctx context.Context, sessionID string, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("session_id = ? AND id = ?", sessionID, id).
		Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
