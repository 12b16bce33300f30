package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/luxebite/luxebite-backend/internal/metrics"
	"github.com/luxebite/luxebite-backend/internal/order"
)

var (
	ErrOrderFinished = errors.New("order is already delivered or cancelled")
	ErrStopped       = errors.New("tracking simulator stopped")
)

// Orders is the part of the order service the simulator drives.
type Orders interface {
	Get(ctx context.Context, id string) (order.Order, error)
	Transition(ctx context.Context, id string, to order.Status, loc *order.TrackingLocation) (order.Order, error)
}

// Simulator advances watched orders one stage per tick until they reach a
// terminal state: the kitchen picks the order up, it goes out for delivery,
// it is delivered. It is a demo of delivery progress, not a dispatch system.
type Simulator struct {
	orders   Orders
	clock    Clock
	interval time.Duration
	metrics  *metrics.Collector
	logger   logrus.FieldLogger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	watches  map[string]*watch
	kitchen  map[string]bool // preparing orders the kitchen has picked up
	stopped  bool
	dispatch int
}

type watch struct {
	cancel context.CancelFunc
}

// NewSimulator ties every watch to ctx; cancelling it ends them all, as
// does Stop.
func NewSimulator(ctx context.Context, orders Orders, clock Clock, interval time.Duration, collector *metrics.Collector, logger logrus.FieldLogger) *Simulator {
	base, cancel := context.WithCancel(ctx)
	return &Simulator{
		orders:   orders,
		clock:    clock,
		interval: interval,
		metrics:  collector,
		logger:   logger,
		base:     base,
		cancel:   cancel,
		watches:  make(map[string]*watch),
		kitchen:  make(map[string]bool),
	}
}

// Watch starts advancing orderID on every tick. Watching an order that is
// already watched is a no-op.
func (s *Simulator) Watch(ctx context.Context, orderID string) error {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status.IsTerminal() {
		return ErrOrderFinished
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.base.Err() != nil {
		return ErrStopped
	}
	if _, ok := s.watches[orderID]; ok {
		return nil
	}

	wctx, cancel := context.WithCancel(s.base)
	w := &watch{cancel: cancel}
	s.watches[orderID] = w
	ticker := s.clock.NewTicker(s.interval)
	s.wg.Add(1)
	s.metrics.WatchStarted()
	go s.run(wctx, orderID, w, ticker)

	s.logger.WithField("order_id", orderID).Debug("tracking started")
	return nil
}

func (s *Simulator) run(ctx context.Context, orderID string, w *watch, ticker Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()
	defer s.release(orderID, w)

	log := s.logger.WithField("order_id", orderID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			o, done, err := s.Step(ctx, orderID)
			if err != nil {
				if errors.Is(err, order.ErrNotFound) || errors.Is(err, order.ErrInvalidTransition) || ctx.Err() != nil {
					log.WithError(err).Debug("tracking ended")
					return
				}
				log.WithError(err).Warn("tracking step failed")
				continue
			}
			if done {
				log.WithField("status", o.Status).Debug("tracking finished")
				return
			}
		}
	}
}

func (s *Simulator) release(orderID string, w *watch) {
	s.mu.Lock()
	if s.watches[orderID] == w {
		delete(s.watches, orderID)
		delete(s.kitchen, orderID)
	}
	s.mu.Unlock()
	w.cancel()
	s.metrics.WatchStopped()
}

// Step advances orderID by one stage. The first step of a preparing order
// only marks it as picked up by the kitchen; the status changes on the next.
// done reports whether the order is now delivered or cancelled.
func (s *Simulator) Step(ctx context.Context, orderID string) (order.Order, bool, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return order.Order{}, false, err
	}
	next, ok := o.Status.Next()
	if !ok {
		s.forgetKitchen(orderID)
		return o, true, nil
	}
	if o.Status == order.StatusPreparing && s.pickUp(orderID) {
		return o, false, nil
	}

	var loc *order.TrackingLocation
	if next == order.StatusOnWay {
		loc = s.nextWaypoint()
	}
	updated, err := s.orders.Transition(ctx, orderID, next, loc)
	if err != nil {
		return order.Order{}, false, err
	}
	s.forgetKitchen(orderID)
	return updated, updated.Status.IsTerminal(), nil
}

// pickUp reports whether this call is the kitchen's first look at orderID.
func (s *Simulator) pickUp(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kitchen[orderID] {
		return false
	}
	s.kitchen[orderID] = true
	return true
}

func (s *Simulator) forgetKitchen(orderID string) {
	s.mu.Lock()
	delete(s.kitchen, orderID)
	s.mu.Unlock()
}

func (s *Simulator) nextWaypoint() *order.TrackingLocation {
	route := Waypoints[1:]
	s.mu.Lock()
	wp := route[s.dispatch%len(route)]
	s.dispatch++
	s.mu.Unlock()
	return &wp
}

// Unwatch stops advancing orderID. It reports whether a watch was running.
func (s *Simulator) Unwatch(orderID string) bool {
	s.mu.Lock()
	w, ok := s.watches[orderID]
	delete(s.watches, orderID)
	delete(s.kitchen, orderID)
	s.mu.Unlock()

	if ok {
		w.cancel()
	}
	return ok
}

func (s *Simulator) Watching(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watches[orderID]
	return ok
}

// Stop ends every watch and waits for their goroutines. Later calls to Watch
// fail with ErrStopped.
func (s *Simulator) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
