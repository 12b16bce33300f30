package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/luxebite/luxebite-backend/internal/cart"
	"github.com/luxebite/luxebite-backend/internal/metrics"
	"github.com/luxebite/luxebite-backend/internal/user"
)

type Service struct {
	repo    Repository
	carts   *cart.Service
	items   cart.ItemSource
	metrics *metrics.Collector
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewService(repo Repository, carts *cart.Service, items cart.ItemSource, collector *metrics.Collector, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:    repo,
		carts:   carts,
		items:   items,
		metrics: collector,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock used for order dates and ETAs.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PlaceFromCart turns the whole cart into an order and empties the cart.
// Without a user nothing is read or written and the cart is kept for after
// login.
func (s *Service) PlaceFromCart(ctx context.Context, u *user.User, cartID string, method PaymentMethod) (Order, error) {
	if u == nil {
		return Order{}, ErrLoginRequired
	}

	var placed Order
	err := s.carts.Checkout(ctx, cartID, func(l *cart.Ledger) error {
		o, err := Build(u, ItemsFromLines(l.Lines()), method, s.now())
		if err != nil {
			return err
		}
		if err := s.repo.Append(ctx, o); err != nil {
			return fmt.Errorf("record order: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.placed(placed, "cart")
	return placed, nil
}

// PlaceSingle orders one unit of itemID directly; the cart is not touched.
func (s *Service) PlaceSingle(ctx context.Context, u *user.User, itemID string, method PaymentMethod) (Order, error) {
	if u == nil {
		return Order{}, ErrLoginRequired
	}
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	o, err := Build(u, SingleItem(item), method, s.now())
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.Append(ctx, o); err != nil {
		return Order{}, fmt.Errorf("record order: %w", err)
	}
	s.placed(o, "single")
	return o, nil
}

func (s *Service) List(ctx context.Context, userID string, statuses ...Status) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID, statuses...)
}

// IDsFor is the user's order ids, most recent first.
func (s *Service) IDsFor(ctx context.Context, userID string) ([]string, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.repo.Get(ctx, id)
}

// Tracking is the public view of an order's progress.
type Tracking struct {
	OrderID          string            `json:"orderId"`
	Status           Status            `json:"status"`
	ETA              string            `json:"eta"`
	Total            int               `json:"total"`
	TrackingLocation *TrackingLocation `json:"trackingLocation,omitempty"`
}

func (s *Service) Track(ctx context.Context, id string) (Tracking, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Tracking{}, err
	}
	return Tracking{
		OrderID:          o.ID,
		Status:           o.Status,
		ETA:              fmt.Sprintf("%d mins", etaMinutes(o, s.now())),
		Total:            o.Payable(),
		TrackingLocation: o.TrackingLocation,
	}, nil
}

func etaMinutes(o Order, now time.Time) int {
	if o.Status.IsTerminal() {
		return 0
	}
	left := o.EstimatedDelivery.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Minutes()))
}

// Cancel lets the owner cancel an order that has not been delivered yet.
// Other users get ErrNotFound.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (Order, error) {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return s.Transition(ctx, orderID, StatusCancelled, nil)
}

// Transition moves an order to status to. Used by cancellation and by the
// tracking simulation.
func (s *Service) Transition(ctx context.Context, orderID string, to Status, loc *TrackingLocation) (Order, error) {
	o, err := s.repo.UpdateStatus(ctx, orderID, to, loc)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidTransition) {
			s.logger.WithError(err).WithField("order_id", orderID).Error("status update failed")
		}
		return Order{}, err
	}
	s.metrics.StatusTransition(string(to))
	s.logger.WithFields(logrus.Fields{"order_id": orderID, "status": to}).Info("order status changed")
	return o, nil
}

func (s *Service) placed(o Order, mode string) {
	s.metrics.OrderPlaced(mode, string(o.PaymentMethod))
	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  o.UserID,
		"mode":     mode,
		"total":    o.Payable(),
	}).Info("order placed")
}
