package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxebite/luxebite-backend/internal/menu"
)

var ErrItemNotFound = errors.New("food item not found")

// ItemSource resolves catalog items by id.
type ItemSource interface {
	GetByID(id string) (menu.FoodItem, error)
}

// Service loads, mutates and saves one ledger per cart session. Calls for
// the same cart id are serialised.
type Service struct {
	repo    Repository
	items   ItemSource
	locks   *sessionLocks
	onAdded func(cartID string, line Line)
}

func NewService(repo Repository, items ItemSource) *Service {
	return &Service{repo: repo, items: items, locks: newSessionLocks()}
}

// OnItemAdded registers a hook run after every successful Add.
func (s *Service) OnItemAdded(fn func(cartID string, line Line)) {
	s.onAdded = fn
}

func (s *Service) Get(ctx context.Context, cartID string) (*Ledger, error) {
	unlock := s.locks.lock(cartID)
	defer unlock()
	return s.load(ctx, cartID)
}

// Add puts one more unit of itemID into the cart and returns the updated
// ledger together with the affected line.
func (s *Service) Add(ctx context.Context, cartID, itemID string) (*Ledger, Line, error) {
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return nil, Line{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	unlock := s.locks.lock(cartID)
	defer unlock()

	ledger, err := s.load(ctx, cartID)
	if err != nil {
		return nil, Line{}, err
	}
	if s.onAdded != nil {
		ledger.SetObserver(ObserverFunc(func(l Line) { s.onAdded(cartID, l) }))
	}
	line := ledger.Add(item)
	if err := s.repo.Save(ctx, cartID, ledger.Lines()); err != nil {
		return nil, Line{}, err
	}
	return ledger, line, nil
}

func (s *Service) SetQuantity(ctx context.Context, cartID, itemID string, quantity int) (*Ledger, error) {
	unlock := s.locks.lock(cartID)
	defer unlock()

	ledger, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := ledger.SetQuantity(itemID, quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cartID, ledger.Lines()); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *Service) Remove(ctx context.Context, cartID, itemID string) (*Ledger, error) {
	unlock := s.locks.lock(cartID)
	defer unlock()

	ledger, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	ledger.Remove(itemID)
	if err := s.repo.Save(ctx, cartID, ledger.Lines()); err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	unlock := s.locks.lock(cartID)
	defer unlock()
	return s.repo.Delete(ctx, cartID)
}

// Checkout hands the current ledger to fn while holding the cart's lock.
// The cart is emptied only when fn succeeds; on error it is left as it was.
func (s *Service) Checkout(ctx context.Context, cartID string, fn func(*Ledger) error) error {
	unlock := s.locks.lock(cartID)
	defer unlock()

	ledger, err := s.load(ctx, cartID)
	if err != nil {
		return err
	}
	if err := fn(ledger); err != nil {
		return err
	}
	return s.repo.Delete(ctx, cartID)
}

func (s *Service) load(ctx context.Context, cartID string) (*Ledger, error) {
	lines, err := s.repo.Load(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return NewLedger(lines...), nil
}

// sessionLocks hands out one mutex per cart id and forgets it once no
// caller holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (s *sessionLocks) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
