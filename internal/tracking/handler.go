package tracking

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/luxebite/luxebite-backend/internal/auth"
	"github.com/luxebite/luxebite-backend/internal/order"
	"github.com/luxebite/luxebite-backend/internal/user"
)

type Handler struct {
	sim *Simulator
}

func NewHandler(sim *Simulator) *Handler {
	return &Handler{sim: sim}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/order/track/:orderId/watch", h.watch)
	app.Delete("/api/order/track/:orderId/watch", h.unwatch)
}

func (h *Handler) watch(c *fiber.Ctx) error {
	orderID, err := h.ownedOrder(c)
	if err != nil || orderID == "" {
		return err
	}

	if err := h.sim.Watch(c.UserContext(), orderID); err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case errors.Is(err, ErrOrderFinished):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrStopped):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
		default:
			return err
		}
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"orderId": orderID, "watching": true})
}

func (h *Handler) unwatch(c *fiber.Ctx) error {
	orderID, err := h.ownedOrder(c)
	if err != nil || orderID == "" {
		return err
	}
	h.sim.Unwatch(orderID)
	return c.JSON(fiber.Map{"orderId": orderID, "watching": false})
}

// ownedOrder writes the error response itself and returns an empty id when
// the caller may not touch the order.
func (h *Handler) ownedOrder(c *fiber.Ctx) (string, error) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return "", auth.LoginRequired(c)
	}

	orderID := utils.CopyString(c.Params("orderId"))
	o, err := h.sim.orders.Get(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return "", c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		}
		return "", err
	}
	if o.UserID != userID {
		return "", c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	}
	return orderID, nil
}
