package user

import (
	"github.com/gofiber/fiber/v2"
)

// LocalsKey is where the auth middleware leaves the id of the signed-in user.
const LocalsKey = "userId"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/user/:userId", h.getUser)
}

// getUser returns a profile. Users may only read their own record.
func (h *Handler) getUser(c *fiber.Ctx) error {
	currentID, err := GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if c.Params("userId") != currentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "forbidden"})
	}

	u, err := h.service.GetByID(c.UserContext(), currentID)
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return err
	}
	return c.JSON(u)
}

// GetUserIDFromCtx returns the signed-in user's id stored in
// c.Locals(LocalsKey).
func GetUserIDFromCtx(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals(LocalsKey).(string)
	if !ok || id == "" {
		return "", fiber.ErrUnauthorized
	}
	return id, nil
}
