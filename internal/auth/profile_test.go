package auth

import (
	"errors"
	"testing"
)

func validRegistration() Registration {
	return Registration{
		Name:            "Asha Kapoor",
		Email:           "asha@example.com",
		Phone:           "9820000000",
		Address:         "14 Carter Road, Bandra",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestRegistrationValidate(t *testing.T) {
	if err := validRegistration().Validate(); err != nil {
		t.Fatalf("expected valid registration, got %v", err)
	}

	cases := map[string]func(r *Registration){
		"no name":        func(r *Registration) { r.Name = "  " },
		"no at":          func(r *Registration) { r.Email = "asha.example.com" },
		"no domain":      func(r *Registration) { r.Email = "asha@" },
		"no dot":         func(r *Registration) { r.Email = "asha@localhost" },
		"no phone":       func(r *Registration) { r.Phone = "" },
		"no address":     func(r *Registration) { r.Address = "" },
		"short password": func(r *Registration) { r.Password, r.ConfirmPassword = "abc", "abc" },
		"mismatch":       func(r *Registration) { r.ConfirmPassword = "secret2" },
	}
	for name, mutate := range cases {
		r := validRegistration()
		mutate(&r)
		err := r.Validate()
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("%s: expected ErrInvalidProfile, got %v", name, err)
		}
	}
}

func TestProfilePatch(t *testing.T) {
	empty := ""
	if err := (ProfilePatch{Name: &empty}).Validate(); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected empty name to be rejected, got %v", err)
	}
	if !(ProfilePatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	addr := " Linking Road "
	email := "NEW@Example.com"
	u := validRegistration().toUser()
	u.ID = "u-1"
	got := ProfilePatch{Address: &addr, Email: &email}.Apply(u)
	if got.Address != "Linking Road" || got.Email != "new@example.com" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Name != u.Name || got.Phone != u.Phone || got.ID != "u-1" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}
