package order

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/luxebite/luxebite-backend/internal/auth"
	"github.com/luxebite/luxebite-backend/internal/cart"
	"github.com/luxebite/luxebite-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// Placing an order is public so that a missing session can be answered with
// login_required instead of a generic 401.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/order/place", h.place)
	app.Get("/api/order/track/:orderId", h.track)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/order/history/:userId", h.history)
	app.Get("/api/v1/orders", h.listOrders)
	app.Post("/api/order/:orderId/cancel", h.cancel)
}

type placeOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	ItemID        string `json:"itemId,omitempty"`
}

func (h *Handler) place(c *fiber.Ctx) error {
	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var u *user.User
	if sess, ok := auth.SessionFromCtx(c); ok {
		u = &sess.User
	}
	method := PaymentMethod(payload.PaymentMethod)

	var (
		placed Order
		err    error
	)
	if payload.ItemID != "" {
		placed, err = h.service.PlaceSingle(c.UserContext(), u, payload.ItemID, method)
	} else {
		cartID, ok := cart.IDFromCtx(c)
		if !ok && u != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": ErrEmptyOrder.Error()})
		}
		placed, err = h.service.PlaceFromCart(c.UserContext(), u, cartID, method)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrLoginRequired):
			return auth.LoginRequired(c)
		case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidPaymentMethod):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Food item not found"})
		default:
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   placed,
		"payable": placed.Payable(),
	})
}

func (h *Handler) track(c *fiber.Ctx) error {
	t, err := h.service.Track(c.UserContext(), c.Params("orderId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		}
		return err
	}
	return c.JSON(t)
}

func (h *Handler) history(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return auth.LoginRequired(c)
	}
	if c.Params("userId") != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}

	ids, err := h.service.IDsFor(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(ids)
}

// listOrders accepts ?status=preparing,on-way to narrow the list.
func (h *Handler) listOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return auth.LoginRequired(c)
	}

	var statuses []Status
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, err := ParseStatus(strings.TrimSpace(part))
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
			}
			statuses = append(statuses, s)
		}
	}

	orders, err := h.service.List(c.UserContext(), userID, statuses...)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return auth.LoginRequired(c)
	}

	o, err := h.service.Cancel(c.UserContext(), userID, c.Params("orderId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case errors.Is(err, ErrInvalidTransition):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		default:
			return err
		}
	}
	return c.JSON(o)
}
