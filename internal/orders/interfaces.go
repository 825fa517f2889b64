package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindForSession(ctx context.Context, sessionID string, id int64) (*models.Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Order, error)
	UpdateFulfillment(ctx context.Context, id int64, updates map[string]any) error
}
