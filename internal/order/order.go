package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luxebite/luxebite-backend/internal/cart"
	"github.com/luxebite/luxebite-backend/internal/menu"
	"github.com/luxebite/luxebite-backend/internal/user"
)

// DeliveryWindow is added to the order date to get the estimated delivery.
const DeliveryWindow = 30 * time.Minute

var (
	// ErrLoginRequired is returned when an order is placed without a user.
	ErrLoginRequired        = errors.New("login required to place an order")
	ErrEmptyOrder           = errors.New("order has no items")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotFound             = errors.New("order not found")
	ErrItemNotFound         = errors.New("food item not found")
)

type Status string

const (
	StatusPreparing Status = "preparing"
	StatusOnWay     Status = "on-way"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Next is the following status on the delivery path; false for terminal states.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPreparing:
		return StatusOnWay, true
	case StatusOnWay:
		return StatusDelivered, true
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition allows one step forward, or cancelling a live order.
func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return from == StatusPreparing || from == StatusOnWay
	}
	next, ok := from.Next()
	return ok && next == to
}

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPreparing, StatusOnWay, StatusDelivered, StatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// Item is a snapshot of a food item at order time.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

type TrackingLocation struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Order is immutable once placed apart from Status and TrackingLocation.
// TotalAmount is the items total; the delivery fee is kept separately.
type Order struct {
	ID                string            `json:"orderId"`
	UserID            string            `json:"userId"`
	Items             []Item            `json:"items"`
	TotalAmount       int               `json:"totalAmount"`
	DeliveryFee       int               `json:"deliveryFee"`
	Status            Status            `json:"status"`
	PaymentMethod     PaymentMethod     `json:"paymentMethod"`
	DeliveryAddress   string            `json:"deliveryAddress"`
	OrderDate         time.Time         `json:"orderDate"`
	EstimatedDelivery time.Time         `json:"estimatedDelivery"`
	TrackingLocation  *TrackingLocation `json:"trackingLocation,omitempty"`
}

// Payable is what the customer pays: items plus delivery.
func (o Order) Payable() int {
	return o.TotalAmount + o.DeliveryFee
}

// Build derives an order for u. A nil user fails with ErrLoginRequired
// before anything else is looked at.
func Build(u *user.User, items []Item, method PaymentMethod, now time.Time) (Order, error) {
	if u == nil {
		return Order{}, ErrLoginRequired
	}
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if !method.Valid() {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}

	snapshot := make([]Item, 0, len(items))
	total := 0
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		snapshot = append(snapshot, it)
		total += it.Price * it.Quantity
	}
	if len(snapshot) == 0 {
		return Order{}, ErrEmptyOrder
	}

	now = now.UTC()
	return Order{
		ID:                NewID(now),
		UserID:            u.ID,
		Items:             snapshot,
		TotalAmount:       total,
		DeliveryFee:       cart.DeliveryFee(total),
		Status:            StatusPreparing,
		PaymentMethod:     method,
		DeliveryAddress:   u.Address,
		OrderDate:         now,
		EstimatedDelivery: now.Add(DeliveryWindow),
	}, nil
}

// NewID returns ORD<unix millis>-<8 hex chars>.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD%d-%s", now.UnixMilli(), suffix)
}

func ItemsFromLines(lines []cart.Line) []Item {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, Item{ID: l.ID, Name: l.Name, Quantity: l.Quantity, Price: l.Price})
	}
	return items
}

// SingleItem is the "order now" path: one unit, bypassing the cart.
func SingleItem(f menu.FoodItem) []Item {
	return []Item{{ID: f.ID, Name: f.Name, Quantity: 1, Price: f.Price}}
}

// applyTransition moves o to status to, keeping the last known location when
// loc is nil.
func applyTransition(o Order, to Status, loc *TrackingLocation) (Order, error) {
	if !CanTransition(o.Status, to) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	if loc != nil {
		l := *loc
		o.TrackingLocation = &l
	}
	return o, nil
}
