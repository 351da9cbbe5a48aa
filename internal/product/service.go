package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	if f.Category != "" && !IsCategory(f.Category) {
		return nil, apperr.Invalid("category", "invalid category")
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByIDs(ctx context.Context, ids []int) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

// Create validates in and stores a new product with the given image URLs.
func (s *Service) Create(ctx context.Context, in Input, images []string) (Product, error) {
	var p Product
	apply(&p, in)
	p.Images = images
	if errs := validateProduct(p, in, true); len(errs) > 0 {
		return Product{}, apperr.Validation(errs)
	}
	return s.repo.Create(ctx, p)
}

// Update applies in to the stored product. Non-empty images replace the
// current set; the replaced URLs are returned so the caller can drop them.
func (s *Service) Update(ctx context.Context, id int, in Input, images []string) (Product, []string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, nil, err
	}
	apply(&p, in)
	var replaced []string
	if len(images) > 0 {
		replaced = p.Images
		p.Images = images
	}
	if errs := validateProduct(p, in, false); len(errs) > 0 {
		return Product{}, nil, apperr.Validation(errs)
	}
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Product{}, nil, err
	}
	return updated, replaced, nil
}

// Delete removes the product and returns it so its images can be dropped.
func (s *Service) Delete(ctx context.Context, id int) (Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) SetRating(ctx context.Context, id int, average float64, count int) error {
	return s.repo.SetRating(ctx, id, average, count)
}

func apply(p *Product, in Input) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		p.Category = strings.ToLower(strings.TrimSpace(*in.Category))
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Ingredients != nil {
		p.Ingredients = *in.Ingredients
	}
	if in.Benefits != nil {
		p.Benefits = *in.Benefits
	}
}

func validateProduct(p Product, in Input, create bool) map[string]string {
	errs := map[string]string{}
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if !IsCategory(p.Category) {
		errs["category"] = "category must be one of " + strings.Join(AllowedCategories, ", ")
	}
	if create && in.Price == nil {
		errs["price"] = "price is required"
	} else if p.Price.IsNegative() {
		errs["price"] = "price must be >= 0"
	}
	if p.Stock < 0 {
		errs["stock"] = "stock must be >= 0"
	}
	for i, ing := range p.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			errs[fmt.Sprintf("ingredients[%d].name", i)] = "ingredient name is required"
		}
	}
	if create && len(p.Images) == 0 {
		errs["images"] = "at least one image is required"
	}
	if len(p.Images) > MaxImages {
		errs["images"] = fmt.Sprintf("at most %d images allowed", MaxImages)
	}
	return errs
}
