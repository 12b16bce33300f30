package menu

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog returns the seeded storefront catalog.
func DefaultCatalog() ([]FoodItem, error) {
	return LoadCatalog(defaultCatalog)
}

// LoadCatalog decodes a YAML list of food items and validates every entry.
func LoadCatalog(data []byte) ([]FoodItem, error) {
	var items []FoodItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("menu: decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if err := validateItem(it); err != nil {
			return nil, fmt.Errorf("menu: catalog entry %d: %w", i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("menu: catalog entry %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return items, nil
}

func validateItem(it FoodItem) error {
	switch {
	case it.ID == "":
		return fmt.Errorf("id is required")
	case it.Name == "":
		return fmt.Errorf("item %q: name is required", it.ID)
	case it.Price <= 0:
		return fmt.Errorf("item %q: price must be positive", it.ID)
	case it.Rating < 0 || it.Rating > 5:
		return fmt.Errorf("item %q: rating must be between 0 and 5", it.ID)
	case it.Distance < 0:
		return fmt.Errorf("item %q: distance must be non-negative", it.ID)
	}
	switch it.Category {
	case CategoryVeg, CategoryNonVeg, CategoryFastFood, CategoryDessert:
	default:
		return fmt.Errorf("item %q: invalid category %q", it.ID, it.Category)
	}
	switch it.Type {
	case TypeNormal, TypeFastFood:
	default:
		return fmt.Errorf("item %q: invalid type %q", it.ID, it.Type)
	}
	return nil
}
