package cart

import (
	"errors"

	"github.com/luxebite/luxebite-backend/internal/menu"
)

var ErrLineNotFound = errors.New("item is not in the cart")

// Line is a catalog item together with its quantity in the cart.
type Line struct {
	menu.FoodItem
	Quantity int `json:"quantity"`
}

// Extension is price times quantity.
func (l Line) Extension() int {
	return l.Price * l.Quantity
}

// Observer is told about every Add on a ledger.
type Observer interface {
	OnAdded(line Line)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(line Line)

func (f ObserverFunc) OnAdded(line Line) { f(line) }

// Ledger holds at most one line per item id, in the order items were first
// added. A line never carries a quantity below 1.
type Ledger struct {
	lines    []Line
	observer Observer
}

// NewLedger rebuilds a ledger from stored lines, merging duplicate ids and
// dropping lines with a non-positive quantity.
func NewLedger(lines ...Line) *Ledger {
	l := &Ledger{lines: make([]Line, 0, len(lines))}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			continue
		}
		if i := l.indexOf(ln.ID); i >= 0 {
			l.lines[i].Quantity += ln.Quantity
			continue
		}
		l.lines = append(l.lines, ln)
	}
	return l
}

func (l *Ledger) SetObserver(o Observer) {
	l.observer = o
}

// Add increments the line for item, creating it with quantity 1 if needed.
func (l *Ledger) Add(item menu.FoodItem) Line {
	var line Line
	if i := l.indexOf(item.ID); i >= 0 {
		l.lines[i].Quantity++
		line = l.lines[i]
	} else {
		line = Line{FoodItem: item, Quantity: 1}
		l.lines = append(l.lines, line)
	}
	if l.observer != nil {
		l.observer.OnAdded(line)
	}
	return line
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
func (l *Ledger) SetQuantity(id string, quantity int) error {
	if quantity <= 0 {
		l.Remove(id)
		return nil
	}
	i := l.indexOf(id)
	if i < 0 {
		return ErrLineNotFound
	}
	l.lines[i].Quantity = quantity
	return nil
}

// Remove deletes the line for id. Missing ids are ignored.
func (l *Ledger) Remove(id string) {
	if i := l.indexOf(id); i >= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
}

func (l *Ledger) Clear() {
	l.lines = l.lines[:0]
}

func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Ledger) Len() int {
	return len(l.lines)
}

func (l *Ledger) IsEmpty() bool {
	return len(l.lines) == 0
}

// ItemCount is the sum of all quantities.
func (l *Ledger) ItemCount() int {
	n := 0
	for _, ln := range l.lines {
		n += ln.Quantity
	}
	return n
}

func (l *Ledger) Subtotal() int {
	sum := 0
	for _, ln := range l.lines {
		sum += ln.Extension()
	}
	return sum
}

func (l *Ledger) DeliveryFee() int {
	return DeliveryFee(l.Subtotal())
}

func (l *Ledger) Total() int {
	return Total(l.Subtotal())
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.lines {
		if l.lines[i].ID == id {
			return i
		}
	}
	return -1
}
