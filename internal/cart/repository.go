package cart

import (
	"context"
	"sync"
)

// Repository stores the lines of each cart session. Load on an unknown
// cart returns no lines and no error.
type Repository interface {
	Load(ctx context.Context, cartID string) ([]Line, error)
	Save(ctx context.Context, cartID string, lines []Line) error
	Delete(ctx context.Context, cartID string) error
}

type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[string][]Line)}
}

func (r *InMemoryRepository) Load(_ context.Context, cartID string) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lines := r.carts[cartID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (r *InMemoryRepository) Save(_ context.Context, cartID string, lines []Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(lines) == 0 {
		delete(r.carts, cartID)
		return nil
	}
	cp := make([]Line, len(lines))
	copy(cp, lines)
	r.carts[cartID] = cp
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, cartID)
	return nil
}
