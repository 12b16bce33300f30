package menu

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() []FoodItem {
	return s.repo.List()
}

func (s *Service) GetByID(id string) (FoodItem, error) {
	return s.repo.GetByID(id)
}

// Browse is the catalog view: filtered by text and category, then sorted.
func (s *Service) Browse(query string, category CategoryFilter, key SortKey) []FoodItem {
	return FilterAndSort(s.repo.List(), query, category, key)
}
