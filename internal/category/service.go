package category

import (
	"context"

	"github.com/wichananm65/juice-shop-backend/internal/product"
)

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns every supported category in declaration order, including
// the empty ones.
func (s *Service) List(ctx context.Context) ([]CategoryItem, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]CategoryItem, 0, len(product.AllowedCategories))
	for _, name := range product.AllowedCategories {
		items = append(items, CategoryItem{Name: name, ProductCount: counts[name]})
	}
	return items, nil
}
