package menu

import "errors"

var ErrNotFound = errors.New("food item not found")

// Repository is read-only: the catalog is seeded once and never mutated.
type Repository interface {
	List() []FoodItem
	GetByID(id string) (FoodItem, error)
}

type InMemoryRepository struct {
	items []FoodItem
	index map[string]int
}

func NewInMemoryRepository(seed []FoodItem) *InMemoryRepository {
	r := &InMemoryRepository{
		items: make([]FoodItem, len(seed)),
		index: make(map[string]int, len(seed)),
	}
	copy(r.items, seed)
	for i, it := range r.items {
		r.index[it.ID] = i
	}
	return r
}

// List returns a copy in catalog order.
func (r *InMemoryRepository) List() []FoodItem {
	out := make([]FoodItem, len(r.items))
	copy(out, r.items)
	return out
}

func (r *InMemoryRepository) GetByID(id string) (FoodItem, error) {
	i, ok := r.index[id]
	if !ok {
		return FoodItem{}, ErrNotFound
	}
	return r.items[i], nil
}
