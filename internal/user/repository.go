package user

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
)

type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	users []User
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{users: make([]User, 0, len(seed))}
	for _, u := range seed {
		u.Email = NormalizeEmail(u.Email)
		repo.users = append(repo.users, u)
	}
	return repo
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = NormalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// Create assigns an id and creation time when missing. The email check and
// the insert happen under one lock so concurrent sign-ups cannot both win.
func (r *InMemoryRepository) Create(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = NormalizeEmail(u.Email)
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users = append(r.users, u)
	return u, nil
}

// Update replaces the stored record with the same id; ID and CreatedAt are
// kept from the stored record.
func (r *InMemoryRepository) Update(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = NormalizeEmail(u.Email)
	idx := -1
	for i, existing := range r.users {
		if existing.ID == u.ID {
			idx = i
			continue
		}
		if existing.Email == u.Email {
			return User{}, ErrEmailExists
		}
	}
	if idx < 0 {
		return User{}, ErrNotFound
	}
	u.CreatedAt = r.users[idx].CreatedAt
	r.users[idx] = u
	return u, nil
}
