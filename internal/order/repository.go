package order

import (
	"context"
	"sync"
)

// Repository is the per-user order log. Orders are only ever appended; the
// status and tracking location are the only fields that change afterwards,
// and only along CanTransition.
type Repository interface {
	Append(ctx context.Context, o Order) error
	// ListByUser returns the user's orders, most recent first, optionally
	// limited to the given statuses.
	ListByUser(ctx context.Context, userID string, statuses ...Status) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, to Status, loc *TrackingLocation) (Order, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
	byUser map[string][]string // newest first
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		orders: make(map[string]Order),
		byUser: make(map[string][]string),
	}
}

func (r *InMemoryRepository) Append(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[o.ID] = cloneOrder(o)
	r.byUser[o.UserID] = append([]string{o.ID}, r.byUser[o.UserID]...)
	return nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, statuses ...Status) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		o := r.orders[id]
		if matchesStatus(o.Status, statuses) {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, to Status, loc *TrackingLocation) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	next, err := applyTransition(o, to, loc)
	if err != nil {
		return Order{}, err
	}
	r.orders[id] = next
	return cloneOrder(next), nil
}

func matchesStatus(s Status, statuses []Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

func cloneOrder(o Order) Order {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	if o.TrackingLocation != nil {
		loc := *o.TrackingLocation
		o.TrackingLocation = &loc
	}
	return o
}
