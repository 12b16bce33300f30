package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luxebite/luxebite-backend/internal/kvstore"
)

// cartTTL is refreshed on every save, so only abandoned carts expire.
const cartTTL = 7 * 24 * time.Hour

// KVRepository keeps each cart as a JSON document under luxebite:cart:<id>.
type KVRepository struct {
	store kvstore.Store
}

func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Load(ctx context.Context, cartID string) ([]Line, error) {
	raw, err := r.store.Get(ctx, kvstore.Key("cart", cartID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return []Line{}, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	return lines, nil
}

func (r *KVRepository) Save(ctx context.Context, cartID string, lines []Line) error {
	if len(lines) == 0 {
		return r.Delete(ctx, cartID)
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, kvstore.Key("cart", cartID), string(b), cartTTL)
}

func (r *KVRepository) Delete(ctx context.Context, cartID string) error {
	return r.store.Delete(ctx, kvstore.Key("cart", cartID))
}
