package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the storefront's Prometheus registry. A nil *Collector is
// valid and records nothing, which keeps tests free of metric wiring.
type Collector struct {
	registry *prometheus.Registry

	ordersPlaced      *prometheus.CounterVec
	cartAdds          prometheus.Counter
	authFailures      *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	activeWatches     prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxebite_orders_placed_total",
				Help: "Orders placed, by checkout mode and payment method",
			},
			[]string{"mode", "payment_method"},
		),
		cartAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "luxebite_cart_items_added_total",
			Help: "Items added to carts",
		}),
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxebite_auth_failures_total",
				Help: "Failed auth gate operations",
			},
			[]string{"operation", "reason"},
		),
		statusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "luxebite_order_status_transitions_total",
				Help: "Order status transitions, by target status",
			},
			[]string{"status"},
		),
		activeWatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "luxebite_tracking_watches_active",
			Help: "Orders currently driven by the tracking simulator",
		}),
	}

	c.registry.MustRegister(
		c.ordersPlaced,
		c.cartAdds,
		c.authFailures,
		c.statusTransitions,
		c.activeWatches,
		prometheus.NewGoCollector(),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) OrderPlaced(mode, paymentMethod string) {
	if c == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(mode, paymentMethod).Inc()
}

func (c *Collector) CartItemAdded() {
	if c == nil {
		return
	}
	c.cartAdds.Inc()
}

func (c *Collector) AuthFailure(operation, reason string) {
	if c == nil {
		return
	}
	c.authFailures.WithLabelValues(operation, reason).Inc()
}

func (c *Collector) StatusTransition(status string) {
	if c == nil {
		return
	}
	c.statusTransitions.WithLabelValues(status).Inc()
}

func (c *Collector) WatchStarted() {
	if c == nil {
		return
	}
	c.activeWatches.Inc()
}

func (c *Collector) WatchStopped() {
	if c == nil {
		return
	}
	c.activeWatches.Dec()
}
