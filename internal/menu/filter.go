package menu

import (
	"sort"
	"strings"
)

// FilterAndSort returns the items matching query and category, ordered by
// key. It never mutates items and ties keep their catalog order.
func FilterAndSort(items []FoodItem, query string, category CategoryFilter, key SortKey) []FoodItem {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]FoodItem, 0, len(items))
	for _, it := range items {
		if q != "" && !matchesQuery(it, q) {
			continue
		}
		if !matchesCategory(it, category) {
			continue
		}
		out = append(out, it)
	}

	if less := lessFor(key); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func matchesQuery(it FoodItem, q string) bool {
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Description), q)
}

func matchesCategory(it FoodItem, f CategoryFilter) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterVeg:
		return it.IsVeg
	case FilterNonVeg:
		return !it.IsVeg
	case FilterFastFood:
		return it.Type == TypeFastFood
	case FilterNormal:
		return it.Type == TypeNormal
	case FilterDessert:
		return it.Category == CategoryDessert
	default:
		return false
	}
}

func lessFor(key SortKey) func(a, b FoodItem) bool {
	switch key {
	case SortNearest:
		return func(a, b FoodItem) bool { return a.Distance < b.Distance }
	case SortFarthest:
		return func(a, b FoodItem) bool { return a.Distance > b.Distance }
	case SortLowPrice:
		return func(a, b FoodItem) bool { return a.Price < b.Price }
	case SortHighPrice:
		return func(a, b FoodItem) bool { return a.Price > b.Price }
	case SortHighRating:
		return func(a, b FoodItem) bool { return a.Rating > b.Rating }
	default:
		return nil
	}
}
