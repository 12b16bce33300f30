package cart

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	CookieName = "cart_id"
	HeaderName = "X-Cart-ID"
)

// IDFromCtx returns a copy of the cart session id the client sent, if it is a
// valid uuid.
func IDFromCtx(c *fiber.Ctx) (string, bool) {
	for _, v := range []string{c.Get(HeaderName), c.Cookies(CookieName)} {
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err == nil {
			return utils.CopyString(v), true
		}
	}
	return "", false
}

// sessionID returns the client's cart id, issuing a fresh one (cookie and
// header) when the request carries none.
func sessionID(c *fiber.Ctx) string {
	if id, ok := IDFromCtx(c); ok {
		return id
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		Expires:  time.Now().Add(cartTTL),
	})
	c.Set(HeaderName, id)
	return id
}

// View is the cart payload returned by every cart route.
type View struct {
	CartID                string `json:"cartId"`
	Items                 []Line `json:"items"`
	ItemCount             int    `json:"itemCount"`
	Subtotal              int    `json:"subtotal"`
	DeliveryFee           int    `json:"deliveryFee"`
	Total                 int    `json:"total"`
	AmountForFreeDelivery int    `json:"amountForFreeDelivery"`
}

func NewView(cartID string, l *Ledger) View {
	sub := l.Subtotal()
	return View{
		CartID:                cartID,
		Items:                 l.Lines(),
		ItemCount:             l.ItemCount(),
		Subtotal:              sub,
		DeliveryFee:           DeliveryFee(sub),
		Total:                 Total(sub),
		AmountForFreeDelivery: AmountForFreeDelivery(sub),
	}
}

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// The cart belongs to the browsing session, not to a user, so it works
// before login.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/cart", h.getCart)
	app.Delete("/api/cart", h.clearCart)
	app.Post("/api/cart/items", h.addItem)
	app.Put("/api/cart/items/:id", h.setQuantity)
	app.Delete("/api/cart/items/:id", h.removeItem)
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	id := sessionID(c)
	ledger, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(NewView(id, ledger))
}

type addItemRequest struct {
	ItemID string `json:"itemId"`
}

type addItemResponse struct {
	Message string `json:"message"`
	Cart    View   `json:"cart"`
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "itemId is required"})
	}

	id := sessionID(c)
	ledger, line, err := h.service.Add(c.UserContext(), id, payload.ItemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Food item not found"})
		}
		return err
	}
	return c.JSON(addItemResponse{
		Message: line.Name + " added to cart",
		Cart:    NewView(id, ledger),
	})
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "quantity is required"})
	}

	id := sessionID(c)
	ledger, err := h.service.SetQuantity(c.UserContext(), id, c.Params("id"), *payload.Quantity)
	if err != nil {
		if errors.Is(err, ErrLineNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		}
		return err
	}
	return c.JSON(NewView(id, ledger))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	id := sessionID(c)
	ledger, err := h.service.Remove(c.UserContext(), id, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(NewView(id, ledger))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	id := sessionID(c)
	if err := h.service.Clear(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(NewView(id, NewLedger()))
}
