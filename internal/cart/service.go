package cart

import (
	"context"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

// ProductReader is the part of the catalog the cart needs.
type ProductReader interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

type Service struct {
	repo     Repository
	products ProductReader
}

func NewService(repo Repository, products ProductReader) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) Get(ctx context.Context, userID int) (Cart, error) {
	return s.repo.Get(ctx, userID)
}

// Add puts one unit of the product in the cart. A new line snapshots the
// current product price.
func (s *Service) Add(ctx context.Context, userID, productID int) (Cart, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}

	qty := 1
	i := c.indexOf(productID)
	if i >= 0 {
		qty = c.Items[i].Quantity + 1
	}
	if qty > p.Stock {
		return Cart{}, &apperr.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: qty, Available: p.Stock}
	}
	if i >= 0 {
		c.Items[i].Quantity = qty
	} else {
		line := Line{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1}
		if len(p.Images) > 0 {
			img := p.Images[0]
			line.Image = &img
		}
		c.Items = append(c.Items, line)
	}
	return s.save(ctx, c)
}

// Update moves a line's quantity by one. Decreasing the last unit removes the line.
func (s *Service) Update(ctx context.Context, userID, productID int, action string) (Cart, error) {
	if action != ActionIncrease && action != ActionDecrease {
		return Cart{}, ErrInvalidAction
	}
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	i := c.indexOf(productID)
	if i < 0 {
		return Cart{}, ErrItemNotFound
	}

	if action == ActionIncrease {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return Cart{}, err
		}
		if c.Items[i].Quantity+1 > p.Stock {
			return Cart{}, &apperr.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: c.Items[i].Quantity + 1, Available: p.Stock}
		}
		c.Items[i].Quantity++
	} else {
		c.Items[i].Quantity--
		if c.Items[i].Quantity == 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
	}
	return s.save(ctx, c)
}

func (s *Service) Remove(ctx context.Context, userID, productID int) (Cart, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Cart{}, err
	}
	i := c.indexOf(productID)
	if i < 0 {
		return Cart{}, ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return s.save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, userID int) error {
	return s.repo.Delete(ctx, userID)
}

func (s *Service) save(ctx context.Context, c Cart) (Cart, error) {
	c.recalculate()
	return s.repo.Save(ctx, c)
}
