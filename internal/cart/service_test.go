package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/angelmondragon/marketflow-backend/pkg/db"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
)

const session = "sess-1"

type stubCatalog struct {
	products   map[int64]*models.Product
	resolveErr error
}

func (s *stubCatalog) Get(_ context.Context, id int64) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

func (s *stubCatalog) Resolve(_ context.Context, ids []int64) (map[int64]*models.Product, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	out := make(map[int64]*models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type recordingObserver struct {
	ops []enums.CartOperation
}

func (r *recordingObserver) CartChanged(_ context.Context, sessionID string, op enums.CartOperation) {
	r.ops = append(r.ops, op)
}

func newCatalog() *stubCatalog {
	return &stubCatalog{products: map[int64]*models.Product{
		1: {ID: 1, Title: "Desk Lamp", Price: decimal.RequireFromString("10.00")},
		2: {ID: 2, Title: "Notebook", Price: decimal.RequireFromString("12.50")},
		3: {ID: 3, Title: "Pen Set", Price: decimal.RequireFromString("4.99")},
	}}
}

func newLedger(t *testing.T, catalog *stubCatalog) (Service, *recordingObserver) {
	t.Helper()
	db := setupCartTestDB(t)
	obs := &recordingObserver{}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(db),
		Catalog:   catalog,
		Tx:        pkgdb.Wrap(db),
		Observers: []Observer{obs},
	})
	require.NoError(t, err)
	return svc, obs
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestAddItemMergesIntoSingleActiveLine(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	first, err := svc.AddItem(ctx, session, 1, 2)
	require.NoError(t, err)
	second, err := svc.AddItem(ctx, session, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	active, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 5, active[0].Quantity)
	assert.Equal(t, "Desk Lamp", active[0].Product.Title)
}

func TestAddItemValidation(t *testing.T) {
	svc, obs := newLedger(t, newCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, session, 1, 0)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.AddItem(ctx, session, 99, 1)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.AddItem(ctx, "", 1, 1)
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.AddItem(ctx, session, 1, 98)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, session, 1, 2)
	requireCode(t, err, pkgerrors.CodeValidation)

	active, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 98, active[0].Quantity)
	assert.Equal(t, []enums.CartOperation{enums.CartOperationAdd}, obs.ops)
}

func TestSummaryMatchesReferenceCart(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, session, 1, 2)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "20.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "1.60", summary.Tax.StringFixed(2))
	assert.Equal(t, "5.99", summary.Shipping.StringFixed(2))
	assert.Equal(t, "27.59", summary.Total.StringFixed(2))
	assert.Equal(t, 2, summary.ItemCount)
}

func TestSummaryFreeShippingAtThreshold(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, session, 2, 2)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "25.00", summary.Subtotal.StringFixed(2))
	assert.True(t, summary.Shipping.IsZero())
	assert.Equal(t, "27.00", summary.Total.StringFixed(2))
}

func TestSummaryItemCountIsSumOfActiveQuantities(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, session, 1, 3)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, session, 2, 4)
	require.NoError(t, err)
	pen, err := svc.AddItem(ctx, session, 3, 6)
	require.NoError(t, err)
	_, err = svc.SaveForLater(ctx, session, pen.ID)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.ItemCount)
	assert.Equal(t, "80.00", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "6.40", summary.Tax.StringFixed(2))
}

func TestRemoveThenUpdateIsNotFound(t *testing.T) {
	svc, obs := newLedger(t, newCatalog())
	ctx := context.Background()

	line, err := svc.AddItem(ctx, session, 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveItem(ctx, session, line.ID))

	_, err = svc.UpdateQuantity(ctx, session, line.ID, 2)
	requireCode(t, err, pkgerrors.CodeNotFound)

	err = svc.RemoveItem(ctx, session, line.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	assert.Equal(t, []enums.CartOperation{enums.CartOperationAdd, enums.CartOperationRemove}, obs.ops)
}

func TestUpdateQuantity(t *testing.T) {
	svc, obs := newLedger(t, newCatalog())
	ctx := context.Background()

	line, err := svc.AddItem(ctx, session, 1, 1)
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, session, line.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, session, line.ID, 100)
	requireCode(t, err, pkgerrors.CodeValidation)

	removed, err := svc.UpdateQuantity(ctx, session, line.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, removed)

	active, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, []enums.CartOperation{
		enums.CartOperationAdd,
		enums.CartOperationUpdate,
		enums.CartOperationRemove,
	}, obs.ops)
}

func TestSaveForLaterExcludedFromSummary(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	lamp, err := svc.AddItem(ctx, session, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, session, 3, 1)
	require.NoError(t, err)

	saved, err := svc.SaveForLater(ctx, session, lamp.ID)
	require.NoError(t, err)
	assert.True(t, saved.SavedForLater)

	again, err := svc.SaveForLater(ctx, session, lamp.ID)
	require.NoError(t, err)
	assert.True(t, again.SavedForLater)

	summary, err := svc.Summary(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "4.99", summary.Subtotal.StringFixed(2))
	assert.Equal(t, 1, summary.ItemCount)

	savedLines, err := svc.ListSaved(ctx, session)
	require.NoError(t, err)
	require.Len(t, savedLines, 1)
	assert.Equal(t, lamp.ID, savedLines[0].ID)
}

func TestMoveToCartMergesWithActiveLine(t *testing.T) {
	svc, obs := newLedger(t, newCatalog())
	ctx := context.Background()

	first, err := svc.AddItem(ctx, session, 1, 2)
	require.NoError(t, err)
	_, err = svc.SaveForLater(ctx, session, first.ID)
	require.NoError(t, err)
	active, err := svc.AddItem(ctx, session, 1, 3)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, active.ID)

	moved, err := svc.MoveToCart(ctx, session, first.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, moved.ID)
	assert.Equal(t, 5, moved.Quantity)

	lines, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	saved, err := svc.ListSaved(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, saved)

	_, err = svc.MoveToCart(ctx, session, first.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, enums.CartOperationMoveToCart, obs.ops[len(obs.ops)-1])
}

func TestMoveToCartTogglesAndIsNoopWhenActive(t *testing.T) {
	svc, obs := newLedger(t, newCatalog())
	ctx := context.Background()

	line, err := svc.AddItem(ctx, session, 2, 1)
	require.NoError(t, err)

	same, err := svc.MoveToCart(ctx, session, line.ID)
	require.NoError(t, err)
	assert.False(t, same.SavedForLater)
	assert.Len(t, obs.ops, 1)

	_, err = svc.SaveForLater(ctx, session, line.ID)
	require.NoError(t, err)
	moved, err := svc.MoveToCart(ctx, session, line.ID)
	require.NoError(t, err)
	assert.Equal(t, line.ID, moved.ID)
	assert.False(t, moved.SavedForLater)
}

func TestClearKeepsSavedLines(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, session, 1, 1)
	require.NoError(t, err)
	pen, err := svc.AddItem(ctx, session, 3, 1)
	require.NoError(t, err)
	_, err = svc.SaveForLater(ctx, session, pen.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, session))

	active, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, active)
	saved, err := svc.ListSaved(ctx, session)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestListingsSkipUnresolvedProducts(t *testing.T) {
	catalog := newCatalog()
	svc, _ := newLedger(t, catalog)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, session, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, session, 2, 1)
	require.NoError(t, err)

	delete(catalog.products, 2)

	active, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ProductID)

	summary, err := svc.Summary(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemCount)

	catalog.resolveErr = pkgerrors.New(pkgerrors.CodeDependency, "catalog down")
	degraded, err := svc.ListActive(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, degraded)
}

func TestSnapshot(t *testing.T) {
	catalog := newCatalog()
	svc, _ := newLedger(t, catalog)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx, session)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.AddItem(ctx, session, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, session, 3, 1)
	require.NoError(t, err)
	notebook, err := svc.AddItem(ctx, session, 2, 1)
	require.NoError(t, err)
	_, err = svc.SaveForLater(ctx, session, notebook.ID)
	require.NoError(t, err)
	delete(catalog.products, 3)

	snapshot, err := svc.Snapshot(ctx, session)
	require.NoError(t, err)
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, int64(1), snapshot.Lines[0].ProductID)
	assert.Equal(t, "Desk Lamp", snapshot.Lines[0].Title)
	assert.Equal(t, "27.59", snapshot.Summary.Total.StringFixed(2))

	catalog.products[1].Price = decimal.RequireFromString("99.00")
	assert.Equal(t, "10.00", snapshot.Lines[0].Price.StringFixed(2))

	catalog.resolveErr = pkgerrors.New(pkgerrors.CodeDependency, "catalog down")
	_, err = svc.Snapshot(ctx, session)
	requireCode(t, err, pkgerrors.CodeDependency)
}

func TestSessionsAreIsolated(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	line, err := svc.AddItem(ctx, session, 1, 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, "sess-2", line.ID, 3)
	requireCode(t, err, pkgerrors.CodeNotFound)
	err = svc.RemoveItem(ctx, "sess-2", line.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	other, err := svc.ListActive(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestWithSessionLockIsReentrant(t *testing.T) {
	svc, _ := newLedger(t, newCatalog())
	ctx := context.Background()

	err := svc.WithSessionLock(ctx, session, func(ctx context.Context) error {
		if _, err := svc.AddItem(ctx, session, 1, 1); err != nil {
			return err
		}
		return svc.Clear(ctx, session)
	})
	require.NoError(t, err)

	sentinel := errors.New("boom")
	err = svc.WithSessionLock(ctx, session, func(context.Context) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Repo: NewRepository(nil)})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Repo: NewRepository(nil), Catalog: newCatalog()})
	assert.Error(t, err)
}
