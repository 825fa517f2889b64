package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
)

// DefaultMaxQuantity caps the quantity of a single line.
const DefaultMaxQuantity = 99

// Service is the per-session cart ledger.
type Service interface {
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*models.CartLineItem, error)
	UpdateQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) (*models.CartLineItem, error)
	RemoveItem(ctx context.Context, sessionID string, itemID int64) error
	SaveForLater(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error)
	MoveToCart(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error)
	ListActive(ctx context.Context, sessionID string) ([]LineItem, error)
	ListSaved(ctx context.Context, sessionID string) ([]LineItem, error)
	Summary(ctx context.Context, sessionID string) (pricing.Summary, error)
	Clear(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (*Snapshot, error)
	WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error
}

// ServiceParams groups dependencies for the cart ledger.
type ServiceParams struct {
	Repo        Repository
	Catalog     productCatalog
	Tx          txRunner
	Locker      Locker
	Observers   []Observer
	Rules       *pricing.Rules
	MaxQuantity int
	Logger      *logger.Logger
}

type service struct {
	repo        Repository
	catalog     productCatalog
	tx          txRunner
	locker      Locker
	observers   []Observer
	rules       pricing.Rules
	maxQuantity int
	logg        *logger.Logger
	now         func() time.Time
}

type heldLockKey struct{}

// NewService builds the cart ledger.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	locker := params.Locker
	if locker == nil {
		locker = NewKeyedLocker()
	}
	rules := pricing.DefaultRules()
	if params.Rules != nil {
		rules = *params.Rules
	}
	maxQuantity := params.MaxQuantity
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxQuantity
	}
	observers := make([]Observer, 0, len(params.Observers))
	for _, o := range params.Observers {
		if o != nil {
			observers = append(observers, o)
		}
	}
	return &service{
		repo:        params.Repo,
		catalog:     params.Catalog,
		tx:          params.Tx,
		locker:      locker,
		observers:   observers,
		rules:       rules,
		maxQuantity: maxQuantity,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*models.CartLineItem, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if quantity > s.maxQuantity {
		return nil, s.quantityTooLarge(quantity)
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return nil, err
	}

	var item *models.CartLineItem
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			existing, err := repo.FindActiveByProduct(ctx, sessionID, productID)
			switch {
			case err == nil:
				merged := existing.Quantity + quantity
				if merged > s.maxQuantity {
					return s.quantityTooLarge(merged)
				}
				existing.Quantity = merged
				if err := repo.Update(ctx, existing); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
				}
				item = existing
			case errors.Is(err, gorm.ErrRecordNotFound):
				created := &models.CartLineItem{
					SessionID: sessionID,
					ProductID: productID,
					Quantity:  quantity,
					AddedDate: s.now().UTC(),
				}
				if err := repo.Insert(ctx, created); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
				}
				item = created
			default:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, sessionID, enums.CartOperationAdd)
	return item, nil
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line and returns nil.
func (s *service) UpdateQuantity(ctx context.Context, sessionID string, itemID int64, quantity int) (*models.CartLineItem, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}

	var item *models.CartLineItem
	op := enums.CartOperationUpdate
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		existing, err := s.load(ctx, s.repo, sessionID, itemID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			op = enums.CartOperationRemove
			return s.delete(ctx, s.repo, sessionID, itemID)
		}
		if quantity > s.maxQuantity {
			return s.quantityTooLarge(quantity)
		}
		existing.Quantity = quantity
		if err := s.repo.Update(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		item = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, sessionID, op)
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, itemID int64) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		return s.delete(ctx, s.repo, sessionID, itemID)
	})
	if err != nil {
		return err
	}
	s.notify(ctx, sessionID, enums.CartOperationRemove)
	return nil
}

// SaveForLater is a no-op for a line that is already saved.
func (s *service) SaveForLater(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}

	var (
		item    *models.CartLineItem
		changed bool
	)
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		existing, err := s.load(ctx, s.repo, sessionID, itemID)
		if err != nil {
			return err
		}
		item = existing
		if existing.SavedForLater {
			return nil
		}
		existing.SavedForLater = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item for later")
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify(ctx, sessionID, enums.CartOperationSaveForLater)
	}
	return item, nil
}

// MoveToCart reactivates a saved line. When the product already has an active
// line the saved quantity is merged into it and the saved line is dropped, so
// the returned line may carry a different id.
func (s *service) MoveToCart(ctx context.Context, sessionID string, itemID int64) (*models.CartLineItem, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}

	var (
		item    *models.CartLineItem
		changed bool
	)
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			saved, err := s.load(ctx, repo, sessionID, itemID)
			if err != nil {
				return err
			}
			item = saved
			if !saved.SavedForLater {
				return nil
			}

			active, err := repo.FindActiveByProduct(ctx, sessionID, saved.ProductID)
			switch {
			case err == nil:
				merged := active.Quantity + saved.Quantity
				if merged > s.maxQuantity {
					return s.quantityTooLarge(merged)
				}
				active.Quantity = merged
				if err := repo.Update(ctx, active); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
				}
				if err := s.delete(ctx, repo, sessionID, saved.ID); err != nil {
					return err
				}
				item = active
			case errors.Is(err, gorm.ErrRecordNotFound):
				saved.SavedForLater = false
				if err := repo.Update(ctx, saved); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move cart item to cart")
				}
			default:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
			}
			changed = true
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notify(ctx, sessionID, enums.CartOperationMoveToCart)
	}
	return item, nil
}

func (s *service) ListActive(ctx context.Context, sessionID string) ([]LineItem, error) {
	return s.listEnriched(ctx, sessionID, false)
}

func (s *service) ListSaved(ctx context.Context, sessionID string) ([]LineItem, error) {
	return s.listEnriched(ctx, sessionID, true)
}

// Summary prices the active lines whose products still resolve.
func (s *service) Summary(ctx context.Context, sessionID string) (pricing.Summary, error) {
	items, err := s.listEnriched(ctx, sessionID, false)
	if err != nil {
		return pricing.Summary{}, err
	}
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{Quantity: item.Quantity, UnitPrice: item.Product.Price})
	}
	return pricing.Summarize(lines, s.rules), nil
}

// Clear drops every active line. Saved lines are kept.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	err := s.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := s.repo.DeleteActive(ctx, sessionID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notify(ctx, sessionID, enums.CartOperationClear)
	return nil
}

// Snapshot copies the active lines with their current prices. Unlike the
// listings a catalog failure aborts the snapshot. Lines whose product no
// longer exists are left out; an empty result is a validation error.
func (s *service) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	active, err := s.lines(ctx, sessionID, false)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.Resolve(ctx, productIDs(active))
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{SessionID: sessionID, TakenAt: s.now().UTC()}
	priced := make([]pricing.Line, 0, len(active))
	for _, line := range active {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		snapshot.Lines = append(snapshot.Lines, SnapshotLine{
			LineID:    line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     pricing.Round(product.Price),
			Title:     product.Title,
		})
		priced = append(priced, pricing.Line{Quantity: line.Quantity, UnitPrice: product.Price})
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	snapshot.Summary = pricing.Summarize(priced, s.rules)
	return snapshot, nil
}

// WithSessionLock runs fn while holding the session's cart lock. Ledger calls
// made from fn with the context it receives reuse the held lock.
func (s *service) WithSessionLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	if held, _ := ctx.Value(heldLockKey{}).(string); held == sessionID {
		return fn(ctx)
	}
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		if ctx.Err() != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart is busy")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
	}
	defer unlock()
	return fn(context.WithValue(ctx, heldLockKey{}, sessionID))
}

func (s *service) listEnriched(ctx context.Context, sessionID string, saved bool) ([]LineItem, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	lines, err := s.lines(ctx, sessionID, saved)
	if err != nil {
		return nil, err
	}
	out := make([]LineItem, 0, len(lines))
	if len(lines) == 0 {
		return out, nil
	}

	products, err := s.catalog.Resolve(ctx, productIDs(lines))
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart listing degraded: products unavailable")
		}
		return out, nil
	}
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		out = append(out, LineItem{CartLineItem: line, Product: *product})
	}
	return out, nil
}

func (s *service) lines(ctx context.Context, sessionID string, saved bool) ([]models.CartLineItem, error) {
	all, err := s.repo.List(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	out := make([]models.CartLineItem, 0, len(all))
	for _, line := range all {
		if line.SavedForLater == saved {
			out = append(out, line)
		}
	}
	return out, nil
}

func (s *service) load(ctx context.Context, repo Repository, sessionID string, itemID int64) (*models.CartLineItem, error) {
	if itemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	item, err := repo.Get(ctx, sessionID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return item, nil
}

func (s *service) delete(ctx context.Context, repo Repository, sessionID string, itemID int64) error {
	if itemID <= 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err := repo.Delete(ctx, sessionID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return nil
}

func (s *service) quantityTooLarge(quantity int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", s.maxQuantity)).
		WithDetails(map[string]any{"quantity": quantity, "max": s.maxQuantity})
}

func (s *service) notify(ctx context.Context, sessionID string, op enums.CartOperation) {
	for _, o := range s.observers {
		o.CartChanged(ctx, sessionID, op)
	}
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	return nil
}

func productIDs(lines []models.CartLineItem) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}
