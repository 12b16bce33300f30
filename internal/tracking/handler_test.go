package tracking

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxebite/luxebite-backend/internal/user"
)

func makeAppWithTrackingHandler(f *fixture) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals(user.LocalsKey, v)
		}
		return c.Next()
	})
	NewHandler(f.sim).RegisterProtectedRoutes(app)
	return app
}

func TestWatchRoutes(t *testing.T) {
	f := newFixture(t)
	app := makeAppWithTrackingHandler(f)
	o := f.place(t)
	url := "/api/order/track/" + o.ID + "/watch"

	do := func(method, target, userID string) int {
		req := httptest.NewRequest(method, target, nil)
		if userID != "" {
			req.Header.Set("X-User-ID", userID)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		return res.StatusCode
	}

	assert.Equal(t, fiber.StatusUnauthorized, do("POST", url, ""))
	assert.Equal(t, fiber.StatusNotFound, do("POST", url, "u-2"))
	assert.Equal(t, fiber.StatusNotFound, do("POST", "/api/order/track/ORD-nope/watch", customer.ID))

	assert.Equal(t, fiber.StatusAccepted, do("POST", url, customer.ID))
	assert.True(t, f.sim.Watching(o.ID))

	assert.Equal(t, fiber.StatusNotFound, do("DELETE", url, "u-2"))
	assert.True(t, f.sim.Watching(o.ID))

	assert.Equal(t, fiber.StatusOK, do("DELETE", url, customer.ID))
	assert.False(t, f.sim.Watching(o.ID))
	assert.Eventually(t, func() bool { return f.clock.ActiveTickers() == 0 }, time.Second, 5*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, _, err := f.sim.Step(context.Background(), o.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, fiber.StatusConflict, do("POST", url, customer.ID))
}

func TestWatchRoutes_KeepEachOrder(t *testing.T) {
	f := newFixture(t)
	app := makeAppWithTrackingHandler(f)
	first, second := f.place(t), f.place(t)

	for _, o := range []string{first.ID, second.ID} {
		req := httptest.NewRequest("POST", "/api/order/track/"+o+"/watch", nil)
		req.Header.Set("X-User-ID", customer.ID)
		res, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusAccepted, res.StatusCode)
	}

	assert.True(t, f.sim.Watching(first.ID))
	assert.True(t, f.sim.Watching(second.ID))
	assert.Equal(t, 2, f.clock.ActiveTickers())
}
