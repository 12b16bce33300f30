package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/luxebite/luxebite-backend/internal/kvstore"
	"github.com/luxebite/luxebite-backend/internal/user"
)

const defaultSessionTTL = 72 * time.Hour

// LocalGate keeps identities in the user store and issues HS256 tokens.
// Every token carries a session id whose record lives in the kv store, so
// logging out revokes the token before it expires.
type LocalGate struct {
	users  *user.Service
	store  kvstore.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLocalGate(users *user.Service, store kvstore.Store, secret string) *LocalGate {
	return &LocalGate{
		users:  users,
		store:  store,
		secret: []byte(secret),
		ttl:    defaultSessionTTL,
		now:    time.Now,
	}
}

func (g *LocalGate) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := g.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	return g.startSession(ctx, u)
}

func (g *LocalGate) Register(ctx context.Context, reg Registration) (Session, error) {
	if err := reg.Validate(); err != nil {
		return Session{}, err
	}
	u, err := g.users.Register(ctx, reg.toUser(), reg.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, err
	}
	return g.startSession(ctx, u)
}

// Logout is idempotent for sessions that are already gone.
func (g *LocalGate) Logout(ctx context.Context, token string) error {
	claims, err := g.parse(token)
	if err != nil {
		return err
	}
	return g.store.Delete(ctx, sessionKey(claims.SessionID))
}

func (g *LocalGate) CurrentUser(ctx context.Context, token string) (Session, error) {
	claims, err := g.parse(token)
	if err != nil {
		return Session{}, err
	}
	owner, err := g.store.Get(ctx, sessionKey(claims.SessionID))
	if errors.Is(err, kvstore.ErrNotFound) || (err == nil && owner != claims.UserID) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	u, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	sess := Session{ID: claims.SessionID, Token: token, User: u}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// UpdateProfile writes the patch to the user store and returns the stored
// record, so the session and the store always agree.
func (g *LocalGate) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (user.User, error) {
	if err := patch.Validate(); err != nil {
		return user.User{}, err
	}
	sess, err := g.CurrentUser(ctx, token)
	if err != nil {
		return user.User{}, err
	}

	updated := patch.Apply(sess.User)
	if patch.Password != nil {
		hashed, err := user.HashPassword(*patch.Password)
		if err != nil {
			return user.User{}, err
		}
		updated.PasswordHash = hashed
	}

	stored, err := g.users.Update(ctx, updated)
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, err
	}
	return stored, nil
}

// TokenValidator checks the signature and expiry of bearer tokens before the
// session lookup. Requests without an Authorization header pass through.
func (g *LocalGate) TokenValidator() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: g.secret,
		ContextKey: "jwt",
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "invalid or expired token",
				"code":    "login_required",
			})
		},
	})
}

type sessionClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (g *LocalGate) startSession(ctx context.Context, u user.User) (Session, error) {
	sid := uuid.NewString()
	exp := g.now().Add(g.ttl)

	claims := sessionClaims{
		UserID:    u.ID,
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(g.now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := g.store.Set(ctx, sessionKey(sid), u.ID, g.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{ID: sid, Token: signed, User: u, ExpiresAt: exp}, nil
}

func (g *LocalGate) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" || claims.UserID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

func sessionKey(sid string) string {
	return kvstore.Key("session", sid)
}
