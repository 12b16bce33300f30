package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/luxebite/luxebite-backend/internal/user"
)

const sessionLocalsKey = "session"

// BearerToken returns the token from "Authorization: Bearer <token>". The
// result is a copy, safe to keep after the request.
func BearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return utils.CopyString(strings.TrimSpace(h[7:]))
	}
	return ""
}

// Middleware resolves the bearer token, if any, to a Session and stores it in
// the request context. Requests without a valid session still proceed;
// RequireSession or the handler decides what that means. Failures to look a
// session up are errors, not anonymous requests.
func Middleware(g Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return c.Next()
		}
		sess, err := g.CurrentUser(c.UserContext(), token)
		switch {
		case err == nil:
			c.Locals(sessionLocalsKey, sess)
			c.Locals(user.LocalsKey, sess.User.ID)
		case errors.Is(err, ErrProviderUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "identity provider unavailable"})
		case !errors.Is(err, ErrNoSession):
			return fmt.Errorf("resolve session: %w", err)
		}
		return c.Next()
	}
}

// RequireSession rejects requests that Middleware did not attach a session to.
func RequireSession(c *fiber.Ctx) error {
	if _, ok := SessionFromCtx(c); !ok {
		return LoginRequired(c)
	}
	return c.Next()
}

func SessionFromCtx(c *fiber.Ctx) (Session, bool) {
	sess, ok := c.Locals(sessionLocalsKey).(Session)
	return sess, ok
}

// WithSession attaches sess to the request the way Middleware does.
func WithSession(c *fiber.Ctx, sess Session) {
	c.Locals(sessionLocalsKey, sess)
	c.Locals(user.LocalsKey, sess.User.ID)
}

// LoginRequired is the response for actions that need a signed-in user.
func LoginRequired(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "please log in to continue",
		"code":    "login_required",
	})
}
