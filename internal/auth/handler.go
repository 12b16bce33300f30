package auth

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/luxebite/luxebite-backend/internal/metrics"
)

type Handler struct {
	gate         Gate
	metrics      *metrics.Collector
	logger       logrus.FieldLogger
	eventsSecret string
}

func NewHandler(gate Gate, collector *metrics.Collector, logger logrus.FieldLogger) *Handler {
	return &Handler{gate: gate, metrics: collector, logger: logger}
}

// WithEventsSecret sets the shared secret provider events are signed with.
func (h *Handler) WithEventsSecret(secret string) *Handler {
	h.eventsSecret = secret
	return h
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/auth/register", h.register)
	app.Post("/api/auth/login", h.login)
	if _, ok := h.gate.(EventSink); ok {
		app.Post("/api/auth/events", h.events)
	}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/auth/logout", h.logout)
	app.Get("/api/auth/me", h.me)
	app.Patch("/api/auth/profile", h.updateProfile)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email and password are required"})
	}

	sess, err := h.gate.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return h.failure(c, "login", err)
	}
	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"user":      sess.User,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(Registration)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	sess, err := h.gate.Register(c.UserContext(), *payload)
	if err != nil {
		return h.failure(c, "register", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Account created",
		"user":      sess.User,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

func (h *Handler) logout(c *fiber.Ctx) error {
	if err := h.gate.Logout(c.UserContext(), BearerToken(c)); err != nil {
		return h.failure(c, "logout", err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *Handler) me(c *fiber.Ctx) error {
	sess, ok := SessionFromCtx(c)
	if !ok {
		return LoginRequired(c)
	}
	return c.JSON(sess.User)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	patch := new(ProfilePatch)
	if err := c.BodyParser(patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if patch.IsEmpty() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "nothing to update"})
	}

	updated, err := h.gate.UpdateProfile(c.UserContext(), BearerToken(c), *patch)
	if err != nil {
		return h.failure(c, "update_profile", err)
	}
	return c.JSON(fiber.Map{"user": updated})
}

func (h *Handler) events(c *fiber.Ctx) error {
	body := c.Body()
	if err := VerifyEvent(h.eventsSecret, body, c.Get(SignatureHeader)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}
	var evt SessionEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if err := h.gate.(EventSink).ApplyEvent(evt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	h.logger.WithField("event", evt.Event).Debug("applied session event")
	return c.SendStatus(fiber.StatusNoContent)
}

// failure maps gate errors onto responses. Unknown errors go to the app's
// error handler.
func (h *Handler) failure(c *fiber.Ctx, op string, err error) error {
	var status int
	var reason string
	switch {
	case errors.Is(err, ErrInvalidProfile):
		status, reason = fiber.StatusBadRequest, "invalid_profile"
	case errors.Is(err, ErrInvalidCredentials):
		status, reason = fiber.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, ErrEmailTaken):
		status, reason = fiber.StatusConflict, "email_taken"
	case errors.Is(err, ErrNoSession):
		h.metrics.AuthFailure(op, "no_session")
		return LoginRequired(c)
	case errors.Is(err, ErrProviderUnavailable):
		status, reason = fiber.StatusServiceUnavailable, "provider_unavailable"
		h.logger.WithError(err).WithField("op", op).Warn("identity provider unavailable")
	default:
		return err
	}

	h.metrics.AuthFailure(op, reason)
	msg := err.Error()
	switch reason {
	case "invalid_credentials":
		msg = "Invalid email or password"
	case "email_taken":
		msg = "Email already exists"
	case "provider_unavailable":
		msg = "Sign-in is temporarily unavailable, please try again"
	}
	return c.Status(status).JSON(fiber.Map{"message": msg})
}
