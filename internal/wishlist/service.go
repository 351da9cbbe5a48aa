package wishlist

import (
	"context"

	"github.com/wichananm65/juice-shop-backend/internal/product"
)

// ProductReader is the part of the catalog the wishlist needs.
type ProductReader interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
	ListByIDs(ctx context.Context, ids []int) ([]product.Product, error)
}

// Service provides business logic for wishlists.
type Service struct {
	repo     Repository
	products ProductReader
}

func NewService(r Repository, products ProductReader) *Service {
	return &Service{repo: r, products: products}
}

// Add saves a product for later. The product must exist.
func (s *Service) Add(ctx context.Context, userID, productID int) ([]int, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *Service) Remove(ctx context.Context, userID, productID int) ([]int, error) {
	return s.repo.Remove(ctx, userID, productID)
}

// List returns the wishlisted products in the order they were added.
// Products deleted from the catalog are skipped.
func (s *Service) List(ctx context.Context, userID int) ([]product.Product, error) {
	ids, err := s.repo.ProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	return s.products.ListByIDs(ctx, ids)
}

func (s *Service) Clear(ctx context.Context, userID int) error {
	return s.repo.Clear(ctx, userID)
}
