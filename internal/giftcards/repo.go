package giftcards

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// Repository persists gift cards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, sessionID string) ([]models.GiftCard, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.GiftCard, error)
	Insert(ctx context.Context, card *models.GiftCard) error
	UpdateDetails(ctx context.Context, sessionID string, id int64, fields map[string]any) error
	Delete(ctx context.Context, sessionID string, id int64) error
	FindRedeemable(ctx context.Context, code string) (*models.GiftCard, error)
	MarkRedeemed(ctx context.Context, id int64, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gift card repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, sessionID string) ([]models.GiftCard, error) {
	var cards []models.GiftCard
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repository) Get(ctx context.Context, sessionID string, id int64) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, id).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) Insert(ctx context.Context, card *models.GiftCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) UpdateDetails(ctx context.Context, sessionID string, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
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
		Delete(&models.GiftCard{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindRedeemable(ctx context.Context, code string) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.WithContext(ctx).
		Where("code = ? AND status = ? AND balance > 0", code, enums.GiftCardStatusActive).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// MarkRedeemed zeroes the balance of a still-active card. It reports false
// when another redemption got there first.
func (r *repository) MarkRedeemed(ctx context.Context, id int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("id = ? AND status = ?", id, enums.GiftCardStatusActive).
		Updates(map[string]any{
			"balance":     decimal.Zero,
			"status":      enums.GiftCardStatusRedeemed,
			"redeemed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
