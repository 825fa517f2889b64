package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/marketflow-backend/api/routes"
	"github.com/angelmondragon/marketflow-backend/internal/addresses"
	"github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/internal/catalog"
	"github.com/angelmondragon/marketflow-backend/internal/checkout"
	"github.com/angelmondragon/marketflow-backend/internal/giftcards"
	"github.com/angelmondragon/marketflow-backend/internal/listings"
	"github.com/angelmondragon/marketflow-backend/internal/orders"
	"github.com/angelmondragon/marketflow-backend/internal/pricing"
	"github.com/angelmondragon/marketflow-backend/internal/registries"
	"github.com/angelmondragon/marketflow-backend/internal/tickets"
	"github.com/angelmondragon/marketflow-backend/pkg/config"
	"github.com/angelmondragon/marketflow-backend/pkg/db"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/metrics"
	"github.com/angelmondragon/marketflow-backend/pkg/migrate"
	"github.com/angelmondragon/marketflow-backend/pkg/outbox"
	"github.com/angelmondragon/marketflow-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := metrics.NewStoreMetrics(registry)

	rules, err := pricing.RulesFromConfig(cfg.Pricing)
	if err != nil {
		return err
	}

	var locker cart.Locker = cart.NewKeyedLocker()
	if cfg.Cart.UsesRedisLock() {
		if locker, err = cart.NewRedisLocker(redisClient, cfg.Cart.LockTTL); err != nil {
			return err
		}
	}

	conn := dbClient.DB()
	catalogService, err := catalog.NewService(catalog.NewRepository(conn), cfg.Catalog.LookupTimeout, logg)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:        cart.NewRepository(conn),
		Catalog:     catalogService,
		Tx:          dbClient,
		Locker:      locker,
		Observers:   []cart.Observer{storeMetrics},
		Rules:       &rules,
		MaxQuantity: cfg.Cart.MaxQuantity,
		Logger:      logg,
	})
	if err != nil {
		return err
	}
	ordersService, err := orders.NewService(orders.NewRepository(conn), dbClient, outbox.NewService(outbox.NewRepository(conn), logg))
	if err != nil {
		return err
	}
	addressService, err := addresses.NewService(addresses.NewRepository(conn), dbClient)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:           cartService,
		Orders:         ordersService,
		Addresses:      addressService,
		Idempotency:    redisClient,
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
		Metrics:        storeMetrics,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	giftCardService, err := giftcards.NewService(giftcards.ServiceParams{
		Repo:    giftcards.NewRepository(conn),
		Tx:      dbClient,
		Limiter: redisClient,
	})
	if err != nil {
		return err
	}
	registryService, err := registries.NewService(registries.NewRepository(conn), dbClient)
	if err != nil {
		return err
	}
	listingService, err := listings.NewService(listings.NewRepository(conn), dbClient)
	if err != nil {
		return err
	}
	ticketService, err := tickets.NewService(tickets.NewRepository(conn), dbClient)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			catalogService,
			cartService,
			checkoutService,
			ordersService,
			addressService,
			giftCardService,
			registryService,
			listingService,
			ticketService,
		),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"cart_locks": cfg.Cart.LockBackend,
	})

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
