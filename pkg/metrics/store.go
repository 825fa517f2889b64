package metrics

import (
	"context"
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/enums"
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks cart activity and checkout outcomes.
type StoreMetrics struct {
	cartMutations    *prometheus.CounterVec
	ordersPlaced     prometheus.Counter
	checkoutFailures *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mf_cart_mutations_total",
		Help: "Successful cart mutations by operation.",
	}, []string{"operation"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mf_orders_placed_total",
		Help: "Orders created at checkout.",
	})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mf_checkout_failures_total",
		Help: "Failed checkout submissions by error code.",
	}, []string{"code"})
	checkoutDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mf_checkout_duration_seconds",
		Help:    "Checkout submission latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(cartMutations, ordersPlaced, checkoutFailures, checkoutDuration)
	return &StoreMetrics{
		cartMutations:    cartMutations,
		ordersPlaced:     ordersPlaced,
		checkoutFailures: checkoutFailures,
		checkoutDuration: checkoutDuration,
	}
}

// CartChanged counts a successful cart mutation. It satisfies the cart
// observer contract so the ledger can report without importing prometheus.
func (s *StoreMetrics) CartChanged(_ context.Context, _ string, op enums.CartOperation) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(string(op))).Inc()
}

// OrderPlaced increments the orders counter.
func (s *StoreMetrics) OrderPlaced() {
	if s == nil || s.ordersPlaced == nil {
		return
	}
	s.ordersPlaced.Inc()
}

// CheckoutFailed records a failed checkout by error code.
func (s *StoreMetrics) CheckoutFailed(code string) {
	if s == nil || s.checkoutFailures == nil {
		return
	}
	s.checkoutFailures.WithLabelValues(normalizeLabel(code)).Inc()
}

// ObserveCheckout records the duration of a checkout submission.
func (s *StoreMetrics) ObserveCheckout(duration time.Duration) {
	if s == nil || s.checkoutDuration == nil {
		return
	}
	s.checkoutDuration.Observe(duration.Seconds())
}
