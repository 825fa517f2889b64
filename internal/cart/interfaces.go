package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

// Repository persists cart line items. Every query is scoped to a session.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, sessionID string) ([]models.CartLineItem, error)
	Get(ctx context.Context, sessionID string, id int64) (*models.CartLineItem, error)
	FindActiveByProduct(ctx context.Context, sessionID string, productID int64) (*models.CartLineItem, error)
	Insert(ctx context.Context, item *models.CartLineItem) error
	Update(ctx context.Context, item *models.CartLineItem) error
	Delete(ctx context.Context, sessionID string, id int64) error
	DeleteActive(ctx context.Context, sessionID string) (int64, error)
}

// Observer is notified after a cart mutation commits.
type Observer interface {
	CartChanged(ctx context.Context, sessionID string, op enums.CartOperation)
}

// Locker serializes work on a single key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type productCatalog interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
	Resolve(ctx context.Context, ids []int64) (map[int64]*models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
