package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
)

// Session event names pushed by the identity provider.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventUserUpdated    = "USER_UPDATED"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw event body.
const SignatureHeader = "X-Auth-Signature"

var ErrBadSignature = errors.New("bad event signature")

type SessionEvent struct {
	Event   string         `json:"event"`
	Session *types.Session `json:"session,omitempty"`
	User    *types.User    `json:"user,omitempty"`
}

// EventSink is implemented by gates that accept provider-pushed events.
type EventSink interface {
	ApplyEvent(evt SessionEvent) error
}

// ApplyEvent folds one provider event into the session table.
func (g *DelegatedGate) ApplyEvent(evt SessionEvent) error {
	switch evt.Event {
	case EventSignedIn, EventTokenRefreshed:
		if evt.Session == nil {
			return fmt.Errorf("%s event without session", evt.Event)
		}
		_, err := g.remember(*evt.Session)
		return err
	case EventSignedOut:
		if evt.Session != nil && evt.Session.AccessToken != "" {
			g.forgetToken(evt.Session.AccessToken)
		}
		if id := evt.userID(); id != "" {
			g.forgetUser(id)
		}
		return nil
	case EventUserUpdated:
		u := evt.User
		if u == nil && evt.Session != nil && evt.Session.User.ID != uuid.Nil {
			u = &evt.Session.User
		}
		if u == nil {
			return fmt.Errorf("%s event without user", evt.Event)
		}
		g.updateUser(toUser(*u))
		return nil
	default:
		return fmt.Errorf("unknown session event %q", evt.Event)
	}
}

func (e SessionEvent) userID() string {
	if e.User != nil {
		return e.User.ID.String()
	}
	if e.Session != nil && e.Session.User.ID != uuid.Nil {
		return e.Session.User.ID.String()
	}
	return ""
}

// SignEvent returns the signature a provider sends for body.
func SignEvent(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyEvent(secret string, body []byte, signature string) error {
	if secret == "" {
		return ErrBadSignature
	}
	want, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), want) {
		return ErrBadSignature
	}
	return nil
}
