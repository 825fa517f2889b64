package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/internal/orders"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

type cartLedger interface {
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*models.CartLineItem, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*cart.Snapshot, error)
	WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error
}

type orderPlacer interface {
	Place(ctx context.Context, input orders.PlaceInput) (*models.Order, error)
	Get(ctx context.Context, sessionID string, orderID int64) (*models.Order, error)
	Reorder(ctx context.Context, sessionID string, orderID int64) ([]orders.ReorderItem, error)
}

type addressBook interface {
	Get(ctx context.Context, sessionID string, addressID int64) (*models.Address, error)
}

// Metrics receives checkout outcomes.
type Metrics interface {
	OrderPlaced()
	CheckoutFailed(code string)
	ObserveCheckout(duration time.Duration)
}
