package auth

import (
	"fmt"
	"strings"

	"github.com/luxebite/luxebite-backend/internal/user"
)

const minPasswordLength = 6

type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate reports the first problem found as an ErrInvalidProfile.
func (r Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return invalid("name is required")
	case !validEmail(r.Email):
		return invalid("a valid email is required")
	case strings.TrimSpace(r.Phone) == "":
		return invalid("phone is required")
	case strings.TrimSpace(r.Address) == "":
		return invalid("address is required")
	case len(r.Password) < minPasswordLength:
		return invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	case r.Password != r.ConfirmPassword:
		return invalid("passwords do not match")
	}
	return nil
}

func (r Registration) toUser() user.User {
	return user.User{
		Name:    strings.TrimSpace(r.Name),
		Email:   user.NormalizeEmail(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
	}
}

// ProfilePatch carries the fields a user changes; nil fields are kept.
type ProfilePatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (p ProfilePatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name cannot be empty")
	}
	if p.Email != nil && !validEmail(*p.Email) {
		return invalid("a valid email is required")
	}
	if p.Password != nil && len(*p.Password) < minPasswordLength {
		return invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil && p.Password == nil
}

// Apply merges the profile fields into u. The password is left to the gate.
func (p ProfilePatch) Apply(u user.User) user.User {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = user.NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Address != nil {
		u.Address = strings.TrimSpace(*p.Address)
	}
	return u
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidProfile, msg)
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
