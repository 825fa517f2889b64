package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/outbox"
	"github.com/angelmondragon/marketflow-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns order placement, history, tracking and fulfillment updates.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*models.Order, error)
	Get(ctx context.Context, sessionID string, orderID int64) (*models.Order, error)
	List(ctx context.Context, sessionID string) ([]models.Order, error)
	Statuses() []enums.OrderStatus
	Track(ctx context.Context, sessionID string, orderID int64) (*TrackingInfo, error)
	Reorder(ctx context.Context, sessionID string, orderID int64) ([]ReorderItem, error)
	ApplyFulfillmentUpdate(ctx context.Context, update FulfillmentUpdate) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outbox,
		now:    time.Now,
	}, nil
}

// Place records the snapshot as a new Processing order and queues an
// order_placed event in the same transaction. The cart is not touched.
func (s *service) Place(ctx context.Context, input PlaceInput) (*models.Order, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	snapshot := input.Snapshot
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if snapshot.SessionID != "" && snapshot.SessionID != sessionID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot belongs to another session")
	}

	lines := make([]models.OrderLine, 0, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		if line.ProductID <= 0 || line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order line").
				WithDetails(map[string]any{"position": i + 1})
		}
		lines = append(lines, models.OrderLine{
			Position:  i + 1,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     pricing.Round(line.Price),
			Title:     line.Title,
		})
	}

	summary := snapshot.Summary
	order := &models.Order{
		SessionID:       sessionID,
		Lines:           lines,
		Subtotal:        pricing.Round(summary.Subtotal),
		Tax:             pricing.Round(summary.Tax),
		Shipping:        pricing.Round(summary.Shipping),
		Total:           pricing.Round(summary.Total),
		ShippingAddress: input.ShippingAddress.Normalized(),
		PaymentMethod:   input.Payment,
		Status:          enums.OrderStatusProcessing,
		OrderDate:       s.now().UTC().Truncate(time.Microsecond),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   strconv.FormatInt(order.ID, 10),
			SessionID:     sessionID,
			Version:       1,
			OccurredAt:    order.OrderDate,
			Data:          orderPlacedPayload(order),
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order placed event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, sessionID string, orderID int64) (*models.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order, err := s.repo.FindForSession(ctx, sessionID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	return order, nil
}

// List returns the session's orders, newest first.
func (s *service) List(ctx context.Context, sessionID string) ([]models.Order, error) {
	orders, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *service) Statuses() []enums.OrderStatus {
	return enums.OrderStatuses()
}

func (s *service) Track(ctx context.Context, sessionID string, orderID int64) (*TrackingInfo, error) {
	order, err := s.Get(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	info := BuildTracking(*order)
	return &info, nil
}

// Reorder projects the order's lines back into cart requests using the
// original quantities.
func (s *service) Reorder(ctx context.Context, sessionID string, orderID int64) ([]ReorderItem, error) {
	order, err := s.Get(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}
	items := make([]ReorderItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, ReorderItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items, nil
}

// ApplyFulfillmentUpdate stores an externally supplied status, tracking
// number and delivery date. Transition legality is not checked.
func (s *service) ApplyFulfillmentUpdate(ctx context.Context, update FulfillmentUpdate) (*models.Order, error) {
	if update.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	status, err := enums.ParseOrderStatus(strings.TrimSpace(update.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status")
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, update.OrderID)
		if err != nil {
			return notFoundOr(err, "load order")
		}
		previous := current.Status

		updates := map[string]any{"status": status}
		current.Status = status
		if update.TrackingNumber != nil {
			tracking := strings.TrimSpace(*update.TrackingNumber)
			if tracking == "" {
				updates["tracking_number"] = nil
				current.TrackingNumber = nil
			} else {
				updates["tracking_number"] = tracking
				current.TrackingNumber = &tracking
			}
		}
		if update.DeliveryDate != nil {
			delivery := update.DeliveryDate.UTC()
			updates["delivery_date"] = delivery
			current.DeliveryDate = &delivery
		}
		if err := repo.UpdateFulfillment(ctx, current.ID, updates); err != nil {
			return notFoundOr(err, "update order fulfillment")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   strconv.FormatInt(current.ID, 10),
			SessionID:     current.SessionID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        current.ID,
				PreviousStatus: previous,
				Status:         status,
				TrackingNumber: current.TrackingNumber,
				DeliveryDate:   current.DeliveryDate,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue order status event")
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func orderPlacedPayload(order *models.Order) payloads.OrderPlacedEvent {
	lines := make([]payloads.OrderPlacedLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, payloads.OrderPlacedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Title:     line.Title,
		})
	}
	return payloads.OrderPlacedEvent{
		OrderID:   order.ID,
		SessionID: order.SessionID,
		Status:    order.Status,
		Subtotal:  order.Subtotal,
		Tax:       order.Tax,
		Shipping:  order.Shipping,
		Total:     order.Total,
		Lines:     lines,
		OrderDate: order.OrderDate,
	}
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
