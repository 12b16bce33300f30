package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/luxebite/luxebite-backend/internal/kvstore"
)

// KVRepository keeps orders in the kv store when no database is configured:
// each order under luxebite:order:<id> and each user's log, newest first,
// under luxebite:orders:<userId>. Writes are serialised in-process.
type KVRepository struct {
	mu    sync.Mutex
	store kvstore.Store
}

func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Append(ctx context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, err := r.userLog(ctx, o.UserID)
	if err != nil {
		return err
	}
	if err := r.putOrder(ctx, o); err != nil {
		return err
	}
	ids = append([]string{o.ID}, ids...)
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, kvstore.Key("orders", o.UserID), string(b), 0)
}

func (r *KVRepository) ListByUser(ctx context.Context, userID string, statuses ...Status) ([]Order, error) {
	ids, err := r.userLog(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if matchesStatus(o.Status, statuses) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *KVRepository) Get(ctx context.Context, id string) (Order, error) {
	raw, err := r.store.Get(ctx, kvstore.Key("order", id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	return o, nil
}

func (r *KVRepository) UpdateStatus(ctx context.Context, id string, to Status, loc *TrackingLocation) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next, err := applyTransition(o, to, loc)
	if err != nil {
		return Order{}, err
	}
	if err := r.putOrder(ctx, next); err != nil {
		return Order{}, err
	}
	return next, nil
}

func (r *KVRepository) putOrder(ctx context.Context, o Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, kvstore.Key("order", o.ID), string(b), 0)
}

func (r *KVRepository) userLog(ctx context.Context, userID string) ([]string, error) {
	raw, err := r.store.Get(ctx, kvstore.Key("orders", userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode order log of %s: %w", userID, err)
	}
	return ids, nil
}
