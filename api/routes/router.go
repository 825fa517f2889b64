package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/marketflow-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/marketflow-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/marketflow-backend/api/controllers/orders"
	"github.com/angelmondragon/marketflow-backend/api/middleware"
	"github.com/angelmondragon/marketflow-backend/internal/addresses"
	"github.com/angelmondragon/marketflow-backend/internal/cart"
	"github.com/angelmondragon/marketflow-backend/internal/checkout"
	"github.com/angelmondragon/marketflow-backend/internal/giftcards"
	"github.com/angelmondragon/marketflow-backend/internal/listings"
	"github.com/angelmondragon/marketflow-backend/internal/orders"
	"github.com/angelmondragon/marketflow-backend/internal/registries"
	"github.com/angelmondragon/marketflow-backend/internal/tickets"
	"github.com/angelmondragon/marketflow-backend/pkg/config"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/redis"
)

const (
	sessionMintLimitPerIP = 30
	checkoutLimitPerSess  = 20
	rateLimitWindow       = time.Minute
)

// RedisStore is the slice of the Redis client the HTTP layer relies on.
type RedisStore interface {
	redis.IdempotencyStore
	redis.RateLimiter
	redis.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	metricsHandler http.Handler,
	catalogService controllers.ProductCatalog,
	cartService cart.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
	addressService addresses.Service,
	giftCardService giftcards.Service,
	registryService registries.Service,
	listingService listings.Service,
	ticketService tickets.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	var idempotencyStore redis.IdempotencyStore
	var limiter redis.RateLimiter
	readyDeps := map[string]controllers.Pinger{"db": dbP}
	if redisStore != nil {
		idempotencyStore = redisStore
		limiter = redisStore
		readyDeps["redis"] = redisStore
	}

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, readyDeps, logg))
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.RateLimit(middleware.NewRateLimitPolicy("session_mint", rateLimitWindow, sessionMintLimitPerIP, 0), limiter, logg)).
			Post("/session", controllers.SessionMint(cfg.Session, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductSearch(catalogService, logg))
			r.Get("/featured", controllers.ProductFeatured(catalogService, logg))
			r.Get("/deals", controllers.ProductDeals(catalogService, logg))
			r.Get("/{productId}", controllers.ProductDetail(catalogService, logg))
			r.Get("/{productId}/recommended", controllers.ProductRecommended(catalogService, logg))
		})
		r.Get("/categories/{category}/products", controllers.CategoryProducts(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(cartService, logg))
				r.Delete("/", cartcontrollers.CartClear(cartService, logg))
				r.Get("/saved", cartcontrollers.CartSaved(cartService, logg))
				r.Get("/summary", cartcontrollers.CartSummary(cartService, logg))
				r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
				r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(cartService, logg))
				r.Post("/items/{itemId}/save-for-later", cartcontrollers.CartSaveForLater(cartService, logg))
				r.Post("/items/{itemId}/move-to-cart", cartcontrollers.CartMoveToCart(cartService, logg))
			})

			r.With(middleware.RateLimit(middleware.NewRateLimitPolicy("checkout", rateLimitWindow, 0, checkoutLimitPerSess), limiter, logg)).
				Post("/checkout", controllers.CheckoutSubmit(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(ordersService, logg))
				r.Get("/statuses", ordercontrollers.Statuses(ordersService, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
				r.Get("/{orderId}/tracking", ordercontrollers.Tracking(ordersService, logg))
				r.Post("/{orderId}/reorder", ordercontrollers.Reorder(checkoutService, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(addressService, logg))
				r.Post("/", controllers.AddressCreate(addressService, logg))
				r.Get("/default", controllers.AddressDefault(addressService, logg))
				r.Get("/{addressId}", controllers.AddressGet(addressService, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(addressService, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(addressService, logg))
				r.Post("/{addressId}/default", controllers.AddressSetDefault(addressService, logg))
			})

			r.Route("/gift-cards", func(r chi.Router) {
				r.Get("/", controllers.GiftCardList(giftCardService, logg))
				r.Post("/", controllers.GiftCardCreate(giftCardService, logg))
				r.Post("/redeem", controllers.GiftCardRedeem(giftCardService, logg))
				r.Get("/{giftCardId}", controllers.GiftCardGet(giftCardService, logg))
				r.Patch("/{giftCardId}", controllers.GiftCardUpdate(giftCardService, logg))
				r.Delete("/{giftCardId}", controllers.GiftCardDelete(giftCardService, logg))
			})

			r.Route("/registries", func(r chi.Router) {
				r.Get("/", controllers.RegistryList(registryService, logg))
				r.Post("/", controllers.RegistryCreate(registryService, logg))
				r.Get("/{registryId}", controllers.RegistryGet(registryService, logg))
				r.Patch("/{registryId}", controllers.RegistryUpdate(registryService, logg))
				r.Delete("/{registryId}", controllers.RegistryDelete(registryService, logg))
			})

			r.Route("/listings", func(r chi.Router) {
				r.Get("/", controllers.ListingList(listingService, logg))
				r.Post("/", controllers.ListingCreate(listingService, logg))
				r.Get("/{listingId}", controllers.ListingGet(listingService, logg))
				r.Patch("/{listingId}", controllers.ListingUpdate(listingService, logg))
				r.Delete("/{listingId}", controllers.ListingDelete(listingService, logg))
			})

			r.Route("/support-tickets", func(r chi.Router) {
				r.Get("/", controllers.TicketList(ticketService, logg))
				r.Post("/", controllers.TicketCreate(ticketService, logg))
				r.Get("/{ticketId}", controllers.TicketGet(ticketService, logg))
				r.Patch("/{ticketId}", controllers.TicketUpdate(ticketService, logg))
				r.Delete("/{ticketId}", controllers.TicketDelete(ticketService, logg))
			})
		})
	})

	return r
}
