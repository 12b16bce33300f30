package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	gotrue "github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/luxebite/luxebite-backend/internal/user"
)

// defaultRecheck is how long a cached session is trusted before the
// provider is asked about the token again.
const defaultRecheck = time.Minute

// DelegatedGate forwards every operation to a hosted GoTrue identity
// provider. The gate's own notion of who is signed in is a session table fed
// by completed provider calls and by session events the provider pushes
// (see ApplyEvent).
type DelegatedGate struct {
	client  gotrue.Client
	now     func() time.Time
	recheck time.Duration

	mu       sync.RWMutex
	sessions map[string]cachedSession // by access token
}

type cachedSession struct {
	Session
	verifiedAt time.Time
}

// NewDelegatedGate talks to the GoTrue API under baseURL + "/auth/v1".
func NewDelegatedGate(baseURL, apiKey string, httpClient *http.Client) *DelegatedGate {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	client := gotrue.New("", apiKey).
		WithCustomGoTrueURL(strings.TrimRight(baseURL, "/") + "/auth/v1").
		WithClient(*httpClient)
	return &DelegatedGate{
		client:   client,
		now:      time.Now,
		recheck:  defaultRecheck,
		sessions: make(map[string]cachedSession),
	}
}

func toUser(p types.User) user.User {
	u := user.User{
		ID:        p.ID.String(),
		Email:     user.NormalizeEmail(p.Email),
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
	}
	u.Name = meta(p, "name")
	u.Address = meta(p, "address")
	if v := meta(p, "phone"); v != "" {
		u.Phone = v
	}
	return u
}

func meta(p types.User, key string) string {
	s, _ := p.UserMetadata[key].(string)
	return s
}

func profileData(u user.User) map[string]interface{} {
	return map[string]interface{}{
		"name":    u.Name,
		"phone":   u.Phone,
		"address": u.Address,
	}
}

type providerError struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
}

func (e providerError) text() string {
	for _, s := range []string{e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (g *DelegatedGate) Login(ctx context.Context, email, password string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	res, err := g.client.SignInWithEmailPassword(user.NormalizeEmail(email), password)
	if err != nil {
		if errors.Is(err, types.ErrInvalidTokenRequest) {
			return Session{}, ErrInvalidCredentials
		}
		status, perr, cerr := classify(err)
		if cerr != nil {
			return Session{}, cerr
		}
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("login: provider returned %d: %s", status, perr.text())
	}
	return g.remember(res.Session)
}

func (g *DelegatedGate) Register(ctx context.Context, reg Registration) (Session, error) {
	if err := reg.Validate(); err != nil {
		return Session{}, err
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	u := reg.toUser()
	res, err := g.client.Signup(types.SignupRequest{
		Email:    u.Email,
		Password: reg.Password,
		Data:     profileData(u),
	})
	if err != nil {
		status, perr, cerr := classify(err)
		if cerr != nil {
			return Session{}, cerr
		}
		if isEmailTaken(status, perr) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("%w: %s", ErrInvalidProfile, perr.text())
	}
	if res.Session.AccessToken == "" {
		// providers without auto-confirm answer with the user only
		return g.Login(ctx, u.Email, reg.Password)
	}
	return g.remember(res.Session)
}

func (g *DelegatedGate) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := g.client.WithToken(token).Logout()
	if err != nil {
		status, perr, cerr := classify(err)
		if cerr != nil {
			return cerr
		}
		g.forgetToken(token)
		if status != http.StatusUnauthorized && status != http.StatusNotFound {
			return fmt.Errorf("logout: provider returned %d: %s", status, perr.text())
		}
		return nil
	}
	g.forgetToken(token)
	return nil
}

// CurrentUser answers from the session table while an entry is fresh and
// asks the provider otherwise. Expired tokens are refused without a call.
func (g *DelegatedGate) CurrentUser(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrNoSession
	}
	now := g.now()

	g.mu.RLock()
	cached, ok := g.sessions[token]
	g.mu.RUnlock()

	expiresAt := tokenExpiry(token)
	if ok && !cached.ExpiresAt.IsZero() {
		expiresAt = cached.ExpiresAt
	}
	if !expiresAt.IsZero() && !now.Before(expiresAt) {
		g.forgetToken(token)
		return Session{}, ErrNoSession
	}
	if ok && now.Sub(cached.verifiedAt) < g.recheck {
		return cached.Session, nil
	}

	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	res, err := g.client.WithToken(token).GetUser()
	if err != nil {
		if _, _, cerr := classify(err); cerr != nil {
			return Session{}, cerr
		}
		g.forgetToken(token)
		return Session{}, ErrNoSession
	}

	sess := Session{Token: strings.Clone(token), User: toUser(res.User), ExpiresAt: expiresAt}
	g.mu.Lock()
	g.sessions[sess.Token] = cachedSession{Session: sess, verifiedAt: now}
	g.mu.Unlock()
	return sess, nil
}

func (g *DelegatedGate) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (user.User, error) {
	if err := patch.Validate(); err != nil {
		return user.User{}, err
	}
	sess, err := g.CurrentUser(ctx, token)
	if err != nil {
		return user.User{}, err
	}
	next := patch.Apply(sess.User)

	req := types.UpdateUserRequest{Data: profileData(next)}
	if patch.Email != nil {
		req.Email = next.Email
	}
	if patch.Password != nil {
		req.Password = patch.Password
	}

	res, err := g.client.WithToken(token).UpdateUser(req)
	if err != nil {
		status, perr, cerr := classify(err)
		switch {
		case cerr != nil:
			return user.User{}, cerr
		case isEmailTaken(status, perr):
			return user.User{}, ErrEmailTaken
		case status == http.StatusUnauthorized:
			g.forgetToken(token)
			return user.User{}, ErrNoSession
		default:
			return user.User{}, fmt.Errorf("%w: %s", ErrInvalidProfile, perr.text())
		}
	}

	updated := toUser(res.User)
	g.updateUser(updated)
	return updated, nil
}

var statusPattern = regexp.MustCompile(`(?s)^response status code (\d+)(?::\s*(.*))?$`)

// classify splits a client error into the provider's status and error body.
// Transport failures and 5xx answers come back as ErrProviderUnavailable.
func classify(err error) (int, providerError, error) {
	var perr providerError
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, perr, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	status, _ := strconv.Atoi(m[1])
	if status >= 500 {
		return status, perr, fmt.Errorf("%w: status %d", ErrProviderUnavailable, status)
	}
	_ = json.Unmarshal([]byte(m[2]), &perr)
	return status, perr, nil
}

// tokenExpiry reads the exp claim of a provider access token. The signature
// is the provider's to check; a zero time means the token carries no expiry.
func tokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (g *DelegatedGate) remember(ps types.Session) (Session, error) {
	if ps.AccessToken == "" || ps.User.ID == uuid.Nil {
		return Session{}, errors.New("provider session without token or user")
	}
	now := g.now()
	sess := Session{Token: ps.AccessToken, User: toUser(ps.User)}
	switch {
	case ps.ExpiresAt > 0:
		sess.ExpiresAt = time.Unix(ps.ExpiresAt, 0)
	case ps.ExpiresIn > 0:
		sess.ExpiresAt = now.Add(time.Duration(ps.ExpiresIn) * time.Second)
	default:
		sess.ExpiresAt = tokenExpiry(ps.AccessToken)
	}
	g.mu.Lock()
	g.sessions[sess.Token] = cachedSession{Session: sess, verifiedAt: now}
	g.mu.Unlock()
	return sess, nil
}

func (g *DelegatedGate) forgetToken(token string) {
	g.mu.Lock()
	delete(g.sessions, token)
	g.mu.Unlock()
}

func (g *DelegatedGate) forgetUser(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for tok, s := range g.sessions {
		if s.User.ID == userID {
			delete(g.sessions, tok)
		}
	}
}

func (g *DelegatedGate) updateUser(u user.User) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for tok, s := range g.sessions {
		if s.User.ID == u.ID {
			s.User = u
			g.sessions[tok] = s
		}
	}
}

func isEmailTaken(status int, perr providerError) bool {
	if status != http.StatusUnprocessableEntity && status != http.StatusBadRequest {
		return false
	}
	if perr.ErrorCode == "user_already_exists" || perr.ErrorCode == "email_exists" {
		return true
	}
	return strings.Contains(strings.ToLower(perr.text()), "already registered")
}
