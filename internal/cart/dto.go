package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
)

// LineItem is a cart line enriched with its resolved product.
type LineItem struct {
	models.CartLineItem
	Product models.Product
}

// SnapshotLine is a by-value copy of an active line priced at snapshot time.
type SnapshotLine struct {
	LineID    int64
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	Title     string
}

// Snapshot is the point-in-time view of the active cart handed to order
// placement.
type Snapshot struct {
	SessionID string
	Lines     []SnapshotLine
	Summary   pricing.Summary
	TakenAt   time.Time
}

// IsEmpty reports whether the snapshot has no priced lines.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Lines) == 0
}
