package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/marketflow-backend/internal/orders"
	pkgcheckout "github.com/angelmondragon/marketflow-backend/pkg/checkout"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/marketflow-backend/pkg/redis"
	"github.com/angelmondragon/marketflow-backend/pkg/types"
)

const (
	idempotencyScope     = "checkout"
	maxIdempotencyKeyLen = 255

	// DefaultReplayTTL is how long a checkout idempotency key is honored.
	DefaultReplayTTL = 7 * 24 * time.Hour
)

// Service turns a session's cart into an order.
type Service interface {
	Submit(ctx context.Context, sessionID, idempotencyKey string, input SubmitInput) (*Result, error)
	Reorder(ctx context.Context, sessionID string, orderID int64) (*ReorderResult, error)
}

// ServiceParams groups checkout dependencies. Addresses, Idempotency, Metrics
// and Logger are optional.
type ServiceParams struct {
	Cart           cartLedger
	Orders         orderPlacer
	Addresses      addressBook
	Idempotency    pkgredis.IdempotencyStore
	IdempotencyTTL time.Duration
	Metrics        Metrics
	Logger         *logger.Logger
}

type service struct {
	cart        cartLedger
	orders      orderPlacer
	addresses   addressBook
	idempotency pkgredis.IdempotencyStore
	replayTTL   time.Duration
	metrics     Metrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart ledger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	ttl := params.IdempotencyTTL
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	metrics := params.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &service{
		cart:        params.Cart,
		orders:      params.Orders,
		addresses:   params.Addresses,
		idempotency: params.Idempotency,
		replayTTL:   ttl,
		metrics:     metrics,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

// Submit validates the form, snapshots the cart, places the order and clears
// the cart while holding the session's cart lock. Nothing is written when a
// step before placement fails.
func (s *service) Submit(ctx context.Context, sessionID, idempotencyKey string, input SubmitInput) (result *Result, err error) {
	started := s.now()
	defer func() { s.record(started, err) }()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if len(idempotencyKey) > maxIdempotencyKeyLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key too long")
	}

	addr, err := s.shippingAddress(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}
	if err := pkgcheckout.Validate(addr, input.PaymentMethod); err != nil {
		return nil, err
	}
	hash, err := requestHash(addr, input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash checkout request")
	}

	err = s.cart.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		if idempotencyKey != "" && s.idempotency != nil {
			previous, err := s.lookupReplay(ctx, sessionID, idempotencyKey, hash)
			if err != nil {
				return err
			}
			if previous != nil {
				result = &Result{Order: previous, Replayed: true, CartCleared: s.clearCart(ctx, sessionID, previous.ID)}
				return nil
			}
		}

		snapshot, err := s.cart.Snapshot(ctx, sessionID)
		if err != nil {
			return err
		}
		order, err := s.orders.Place(ctx, orders.PlaceInput{
			SessionID:       sessionID,
			Snapshot:        snapshot,
			ShippingAddress: addr.Address(),
			Payment:         input.PaymentMethod.Summary(),
		})
		if err != nil {
			return err
		}
		s.metrics.OrderPlaced()

		if idempotencyKey != "" && s.idempotency != nil {
			s.rememberReplay(ctx, sessionID, idempotencyKey, hash, order.ID)
		}
		result = &Result{Order: order, CartCleared: s.clearCart(ctx, sessionID, order.ID)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reorder adds every line of a past order back to the cart. Lines the cart
// rejects are reported rather than failing the whole request.
func (s *service) Reorder(ctx context.Context, sessionID string, orderID int64) (*ReorderResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required")
	}
	items, err := s.orders.Reorder(ctx, sessionID, orderID)
	if err != nil {
		return nil, err
	}

	result := &ReorderResult{Failed: []ReorderFailure{}}
	err = s.cart.WithSessionLock(ctx, sessionID, func(ctx context.Context) error {
		for _, item := range items {
			if _, err := s.cart.AddItem(ctx, sessionID, item.ProductID, item.Quantity); err != nil {
				result.Failed = append(result.Failed, reorderFailure(item, err))
				continue
			}
			result.Added++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) shippingAddress(ctx context.Context, sessionID string, input SubmitInput) (pkgcheckout.AddressInput, error) {
	if input.AddressID == nil {
		if input.ShippingAddress == nil {
			return pkgcheckout.AddressInput{}, nil
		}
		return *input.ShippingAddress, nil
	}
	if s.addresses == nil {
		return pkgcheckout.AddressInput{}, pkgerrors.New(pkgerrors.CodeValidation, "saved addresses are not available")
	}
	saved, err := s.addresses.Get(ctx, sessionID, *input.AddressID)
	if err != nil {
		return pkgcheckout.AddressInput{}, err
	}
	return addressInput(saved), nil
}

func (s *service) lookupReplay(ctx context.Context, sessionID, key, hash string) (*models.Order, error) {
	raw, err := s.idempotency.Get(ctx, s.replayKey(sessionID, key))
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read checkout idempotency record")
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode checkout idempotency record")
	}
	if record.RequestHash != hash {
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different payload")
	}
	return s.orders.Get(ctx, sessionID, record.OrderID)
}

func (s *service) rememberReplay(ctx context.Context, sessionID, key, hash string, orderID int64) {
	payload, err := json.Marshal(idempotencyRecord{RequestHash: hash, OrderID: orderID})
	if err == nil {
		_, err = s.idempotency.SetNX(ctx, s.replayKey(sessionID, key), string(payload), s.replayTTL)
	}
	if err != nil && s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID)
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "checkout idempotency record not stored")
	}
}

func (s *service) replayKey(sessionID, key string) string {
	return s.idempotency.IdempotencyKey(idempotencyScope, sessionID+":"+key)
}

func (s *service) clearCart(ctx context.Context, sessionID string, orderID int64) bool {
	if err := s.cart.Clear(ctx, sessionID); err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(s.logg.WithSessionID(ctx, sessionID), orderID)
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "order placed but cart not cleared")
		}
		return false
	}
	return true
}

func (s *service) record(started time.Time, err error) {
	s.metrics.ObserveCheckout(s.now().Sub(started))
	if err == nil {
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.CheckoutFailed(string(code))
}

// requestHash fingerprints a checkout for replay matching. Only the masked
// payment summary is hashed; the card number and CVV never reach the store.
func requestHash(addr pkgcheckout.AddressInput, payment pkgcheckout.PaymentInput) (string, error) {
	body, err := json.Marshal(struct {
		Address  pkgcheckout.AddressInput `json:"address"`
		Payment  types.PaymentSummary     `json:"payment"`
		Expiry   string                   `json:"expiry,omitempty"`
		CardName string                   `json:"cardName,omitempty"`
	}{
		Address:  addr,
		Payment:  payment.Summary(),
		Expiry:   strings.TrimSpace(payment.ExpiryDate),
		CardName: strings.TrimSpace(payment.CardName),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func addressInput(saved *models.Address) pkgcheckout.AddressInput {
	return pkgcheckout.AddressInput{
		Name:   saved.Address.Name,
		Street: saved.Address.Street,
		City:   saved.Address.City,
		State:  saved.Address.State,
		Zip:    saved.Address.Zip,
	}
}

func reorderFailure(item orders.ReorderItem, err error) ReorderFailure {
	failure := ReorderFailure{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Code:      string(pkgerrors.CodeInternal),
		Message:   err.Error(),
	}
	if typed := pkgerrors.As(err); typed != nil {
		failure.Code = string(typed.Code())
		failure.Message = typed.Message()
	}
	return failure
}

type noopMetrics struct{}

func (noopMetrics) OrderPlaced() {}

func (noopMetrics) CheckoutFailed(string) {}

func (noopMetrics) ObserveCheckout(time.Duration) {}
