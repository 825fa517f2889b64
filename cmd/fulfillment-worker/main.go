package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/marketflow-backend/internal/fulfillment"
	"github.com/angelmondragon/marketflow-backend/internal/orders"
	"github.com/angelmondragon/marketflow-backend/pkg/config"
	"github.com/angelmondragon/marketflow-backend/pkg/db"
	"github.com/angelmondragon/marketflow-backend/pkg/instance"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/metrics"
	"github.com/angelmondragon/marketflow-backend/pkg/migrate"
	"github.com/angelmondragon/marketflow-backend/pkg/outbox"
	"github.com/angelmondragon/marketflow-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/marketflow-backend/pkg/pubsub"
	"github.com/angelmondragon/marketflow-backend/pkg/redis"
)

const (
	serviceName  = "fulfillment-worker"
	processedTTL = 7 * 24 * time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	manager, err := idempotency.NewManager(redisClient, processedTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency manager", err)
		os.Exit(1)
	}
	consumer, err := fulfillment.NewConsumer(
		ordersService,
		pubsubClient.FulfillmentSubscription(),
		manager,
		metrics.NewWorkerMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment consumer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"workerId":     instance.GetID(),
		"env":          cfg.App.Env,
		"serviceKind":  serviceName,
		"subscription": cfg.PubSub.FulfillmentSubscription,
	})

	for name, ping := range map[string]func(context.Context) error{
		"database": dbClient.Ping,
		"redis":    redisClient.Ping,
		"pubsub":   pubsubClient.Ping,
	} {
		if err := ping(ctx); err != nil {
			logg.Error(logg.WithField(ctx, "dependency", name), "dependency not ready", err)
			os.Exit(1)
		}
	}
	logg.Info(ctx, "starting fulfillment worker")

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "fulfillment worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "fulfillment worker shutting down gracefully")
}
