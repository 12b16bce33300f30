package cart

import (
	"math/rand"
	"testing"

	"github.com/luxebite/luxebite-backend/internal/menu"
)

func food(id string, price int) menu.FoodItem {
	return menu.FoodItem{ID: id, Name: "item " + id, Price: price, Category: menu.CategoryVeg, Type: menu.TypeNormal}
}

func TestLedger_TwoLinesScenario(t *testing.T) {
	l := NewLedger()
	l.Add(food("1", 299))
	l.Add(food("2", 40))
	l.Add(food("2", 40))

	if got := l.Subtotal(); got != 379 {
		t.Fatalf("subtotal: expected 379, got %d", got)
	}
	if got := l.DeliveryFee(); got != 0 {
		t.Fatalf("delivery fee: expected 0, got %d", got)
	}
	if got := l.Total(); got != 379 {
		t.Fatalf("total: expected 379, got %d", got)
	}
	if l.Len() != 2 || l.ItemCount() != 3 {
		t.Fatalf("expected 2 lines / 3 units, got %d / %d", l.Len(), l.ItemCount())
	}
}

func TestDeliveryFee_Boundary(t *testing.T) {
	cases := []struct {
		subtotal, fee, hint int
	}{
		{0, 40, 300},
		{1, 40, 299},
		{299, 40, 1},
		{300, 0, 0},
		{1000, 0, 0},
	}
	for _, tc := range cases {
		if got := DeliveryFee(tc.subtotal); got != tc.fee {
			t.Errorf("DeliveryFee(%d) = %d, want %d", tc.subtotal, got, tc.fee)
		}
		if got := Total(tc.subtotal); got != tc.subtotal+tc.fee {
			t.Errorf("Total(%d) = %d", tc.subtotal, got)
		}
		if got := AmountForFreeDelivery(tc.subtotal); got != tc.hint {
			t.Errorf("AmountForFreeDelivery(%d) = %d, want %d", tc.subtotal, got, tc.hint)
		}
	}
}

func TestLedger_SetQuantityAndRemove(t *testing.T) {
	l := NewLedger()
	l.Add(food("1", 100))
	l.Add(food("2", 50))

	if err := l.SetQuantity("1", 4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if l.Subtotal() != 450 {
		t.Fatalf("expected 450, got %d", l.Subtotal())
	}

	if err := l.SetQuantity("9", 2); err != ErrLineNotFound {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}

	// zero removes the line
	if err := l.SetQuantity("2", 0); err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected one line after zero quantity, got %d", l.Len())
	}

	l.Remove("1")
	l.Remove("1")
	if !l.IsEmpty() {
		t.Fatalf("expected empty ledger")
	}
}

func TestLedger_KeepsInsertionOrder(t *testing.T) {
	l := NewLedger()
	for _, id := range []string{"3", "1", "2", "1"} {
		l.Add(food(id, 10))
	}
	lines := l.Lines()
	want := []string{"3", "1", "2"}
	for i, id := range want {
		if lines[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, lines[i].ID)
		}
	}
	if lines[1].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %d", lines[1].Quantity)
	}

	// Lines is a copy
	lines[0].Quantity = 99
	if l.Lines()[0].Quantity != 1 {
		t.Fatalf("Lines leaked internal state")
	}
}

func TestLedger_ObserverSeesEveryAdd(t *testing.T) {
	var seen []Line
	l := NewLedger()
	l.SetObserver(ObserverFunc(func(line Line) { seen = append(seen, line) }))
	l.Add(food("1", 10))
	l.Add(food("1", 10))

	if len(seen) != 2 || seen[1].Quantity != 2 {
		t.Fatalf("unexpected notifications: %+v", seen)
	}
}

func TestNewLedger_DropsInvalidLines(t *testing.T) {
	l := NewLedger(
		Line{FoodItem: food("1", 10), Quantity: 2},
		Line{FoodItem: food("2", 10), Quantity: 0},
		Line{FoodItem: food("1", 10), Quantity: 1},
		Line{FoodItem: food("3", 10), Quantity: -4},
	)
	if l.Len() != 1 || l.Lines()[0].Quantity != 3 {
		t.Fatalf("unexpected ledger: %+v", l.Lines())
	}
}

// Random operation sequences never leave a non-positive quantity behind and
// the subtotal always matches the lines.
func TestLedger_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	catalog := []menu.FoodItem{food("1", 299), food("2", 40), food("3", 120), food("4", 5)}

	l := NewLedger()
	for step := 0; step < 2000; step++ {
		it := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(4) {
		case 0, 1:
			l.Add(it)
		case 2:
			_ = l.SetQuantity(it.ID, rng.Intn(6)-2)
		case 3:
			l.Remove(it.ID)
		}

		sum := 0
		seen := map[string]bool{}
		for _, ln := range l.Lines() {
			if ln.Quantity <= 0 {
				t.Fatalf("step %d: line %s has quantity %d", step, ln.ID, ln.Quantity)
			}
			if seen[ln.ID] {
				t.Fatalf("step %d: duplicate line %s", step, ln.ID)
			}
			seen[ln.ID] = true
			sum += ln.Price * ln.Quantity
		}
		if sum != l.Subtotal() {
			t.Fatalf("step %d: subtotal %d != %d", step, l.Subtotal(), sum)
		}
	}
}
