package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/marketflow-backend/internal/orders"
	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketflow-backend/pkg/errors"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/outbox/payloads"
)

const consumerName = "fulfillment-updates"

type statusApplier interface {
	ApplyFulfillmentUpdate(ctx context.Context, update orders.FulfillmentUpdate) (*models.Order, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer, messageID string) (bool, error)
	Delete(ctx context.Context, consumer, messageID string) error
}

type workerMetrics interface {
	ObserveDuration(worker string, duration time.Duration)
	IncSuccess(worker string)
	IncFailure(worker string)
}

// Consumer applies fulfillment provider status updates to orders.
type Consumer struct {
	orders       statusApplier
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	metrics      workerMetrics
	logg         *logger.Logger
}

// NewConsumer builds a fulfillment update consumer. metrics may be nil.
func NewConsumer(orders statusApplier, subscription *pubsub.Subscriber, manager idempotencyChecker, metrics workerMetrics, logg *logger.Logger) (*Consumer, error) {
	if orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("fulfillment subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		orders:       orders,
		subscription: subscription,
		idempotency:  manager,
		metrics:      metrics,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) (result processResult) {
	started := time.Now()
	defer func() { c.observe(started, result) }()

	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var payload payloads.FulfillmentUpdate
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode fulfillment update", err)
		return processResult{ack: true}
	}
	if payload.OrderID <= 0 || payload.Status == "" {
		c.logg.Warn(logCtx, "fulfillment update missing order id or status")
		return processResult{ack: true}
	}
	logCtx = c.logg.WithOrderID(logCtx, payload.OrderID)
	logCtx = c.logg.WithField(logCtx, "status", payload.Status)

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, consumerName, msg.ID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "fulfillment update already processed")
		return processResult{ack: true}
	}

	_, err = c.orders.ApplyFulfillmentUpdate(ctx, orders.FulfillmentUpdate{
		OrderID:        payload.OrderID,
		Status:         payload.Status,
		TrackingNumber: payload.TrackingNumber,
		DeliveryDate:   payload.DeliveryDate,
	})
	switch {
	case err == nil:
		c.logg.Info(logCtx, "fulfillment update applied")
		return processResult{ack: true}
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation), pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "fulfillment update rejected")
		return processResult{ack: true}
	default:
		c.logg.Error(logCtx, "fulfillment update failed", err)
		_ = c.idempotency.Delete(ctx, consumerName, msg.ID)
		return processResult{nack: true}
	}
}

func (c *Consumer) observe(started time.Time, result processResult) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveDuration(consumerName, time.Since(started))
	if result.nack {
		c.metrics.IncFailure(consumerName)
		return
	}
	c.metrics.IncSuccess(consumerName)
}
