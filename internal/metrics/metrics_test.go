package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.OrderPlaced("cart", "upi")
	c.OrderPlaced("cart", "upi")
	c.OrderPlaced("single", "cod")
	c.CartItemAdded()
	c.AuthFailure("login", "invalid_credentials")
	c.StatusTransition("on-way")
	c.WatchStarted()
	c.WatchStarted()
	c.WatchStopped()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ordersPlaced.WithLabelValues("cart", "upi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ordersPlaced.WithLabelValues("single", "cod")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cartAdds))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.authFailures.WithLabelValues("login", "invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.statusTransitions.WithLabelValues("on-way")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeWatches))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.OrderPlaced("cart", "upi")
		c.CartItemAdded()
		c.AuthFailure("login", "x")
		c.StatusTransition("delivered")
		c.WatchStarted()
		c.WatchStopped()
	})
	assert.Nil(t, c.Registry())
}
