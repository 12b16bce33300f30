package menu

import "fmt"

type Category string

const (
	CategoryVeg      Category = "veg"
	CategoryNonVeg   Category = "non-veg"
	CategoryFastFood Category = "fast-food"
	CategoryDessert  Category = "dessert"
)

type ItemType string

const (
	TypeNormal   ItemType = "normal"
	TypeFastFood ItemType = "fast-food"
)

// FoodItem is a catalog entry. Prices are whole rupees.
type FoodItem struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       int      `json:"price" yaml:"price"`
	Image       string   `json:"image,omitempty" yaml:"image"`
	Category    Category `json:"category" yaml:"category"`
	Type        ItemType `json:"type" yaml:"type"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Distance    float64  `json:"distance" yaml:"distance"`
	IsVeg       bool     `json:"isVeg" yaml:"isVeg"`
}

// CategoryFilter is the single active category selection of a catalog view.
type CategoryFilter string

const (
	FilterAll      CategoryFilter = "all"
	FilterVeg      CategoryFilter = "veg"
	FilterNonVeg   CategoryFilter = "non-veg"
	FilterFastFood CategoryFilter = "fast-food"
	FilterNormal   CategoryFilter = "normal"
	FilterDessert  CategoryFilter = "dessert"
)

type SortKey string

const (
	SortNone       SortKey = ""
	SortNearest    SortKey = "nearest"
	SortFarthest   SortKey = "farthest"
	SortLowPrice   SortKey = "low-price"
	SortHighPrice  SortKey = "high-price"
	SortHighRating SortKey = "high-rating"
)

// Option is a labelled choice offered to clients.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var CategoryFilters = []Option{
	{ID: string(FilterAll), Name: "All Items"},
	{ID: string(FilterVeg), Name: "Vegetarian"},
	{ID: string(FilterNonVeg), Name: "Non-Vegetarian"},
	{ID: string(FilterFastFood), Name: "Fast Food"},
	{ID: string(FilterNormal), Name: "Regular Food"},
	{ID: string(FilterDessert), Name: "Desserts"},
}

var SortOptions = []Option{
	{ID: string(SortNearest), Name: "Nearest First"},
	{ID: string(SortFarthest), Name: "Farthest First"},
	{ID: string(SortLowPrice), Name: "Price: Low to High"},
	{ID: string(SortHighPrice), Name: "Price: High to Low"},
	{ID: string(SortHighRating), Name: "Highest Rated"},
}

// ParseCategoryFilter maps a query value to a filter. Empty means all.
func ParseCategoryFilter(raw string) (CategoryFilter, error) {
	if raw == "" {
		return FilterAll, nil
	}
	for _, o := range CategoryFilters {
		if o.ID == raw {
			return CategoryFilter(raw), nil
		}
	}
	return "", fmt.Errorf("unknown category filter %q", raw)
}

// ParseSortKey maps a query value to a sort key. Empty keeps catalog order.
func ParseSortKey(raw string) (SortKey, error) {
	if raw == "" {
		return SortNone, nil
	}
	for _, o := range SortOptions {
		if o.ID == raw {
			return SortKey(raw), nil
		}
	}
	return "", fmt.Errorf("unknown sort option %q", raw)
}
