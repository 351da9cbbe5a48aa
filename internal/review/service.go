package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

// ProductReader is the part of the catalog reviews need.
type ProductReader interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

// DeliveryChecker answers whether a user received a product.
type DeliveryChecker interface {
	HasDelivered(ctx context.Context, userID, productID int) (bool, error)
}

type Service struct {
	repo       Repository
	products   ProductReader
	deliveries DeliveryChecker
	ratings    *Aggregator
}

func NewService(repo Repository, products ProductReader, deliveries DeliveryChecker, ratings *Aggregator) *Service {
	return &Service{repo: repo, products: products, deliveries: deliveries, ratings: ratings}
}

// Create accepts a review only from a user with a delivered order that
// contains the product.
func (s *Service) Create(ctx context.Context, userID, productID int, in Input, images []string) (Review, error) {
	if in.Rating == nil {
		return Review{}, apperr.Invalid("rating", "rating is required")
	}
	r := Review{UserID: userID, ProductID: productID, Images: images}
	apply(&r, in)
	if r.Images == nil {
		r.Images = []string{}
	}
	if errs := validate(r); len(errs) > 0 {
		return Review{}, apperr.Validation(errs)
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return Review{}, err
	}
	ok, err := s.deliveries.HasDelivered(ctx, userID, productID)
	if err != nil {
		return Review{}, err
	}
	if !ok {
		return Review{}, ErrNotPurchased
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return Review{}, err
	}
	s.recompute(ctx, productID)
	return created, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID int) ([]Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, productID)
}

// Update edits the caller's own review. Non-empty images replace the current
// set; the replaced URLs are returned so the caller can drop them.
func (s *Service) Update(ctx context.Context, userID, id int, in Input, images []string) (Review, []string, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Review{}, nil, err
	}
	if r.UserID != userID {
		return Review{}, nil, ErrNotAuthor
	}
	apply(&r, in)
	var replaced []string
	if len(images) > 0 {
		replaced = r.Images
		r.Images = images
	}
	if errs := validate(r); len(errs) > 0 {
		return Review{}, nil, apperr.Validation(errs)
	}
	updated, err := s.repo.Update(ctx, r)
	if err != nil {
		return Review{}, nil, err
	}
	if in.Rating != nil {
		s.recompute(ctx, r.ProductID)
	}
	return updated, replaced, nil
}

// Delete removes the caller's own review and returns it.
func (s *Service) Delete(ctx context.Context, userID, id int) (Review, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if r.UserID != userID {
		return Review{}, ErrNotAuthor
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return Review{}, err
	}
	s.recompute(ctx, r.ProductID)
	return r, nil
}

// RemoveAuthor deletes every review by userID and refreshes the ratings of
// the products they covered.
func (s *Service) RemoveAuthor(ctx context.Context, userID int) ([]Review, error) {
	removed, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(removed))
	for _, r := range removed {
		if seen[r.ProductID] {
			continue
		}
		seen[r.ProductID] = true
		s.recompute(ctx, r.ProductID)
	}
	return removed, nil
}

// recompute runs after the review write is stored; a failure is logged and
// the rating catches up on the next write.
func (s *Service) recompute(ctx context.Context, productID int) {
	if _, err := s.ratings.Recompute(ctx, productID); err != nil {
		log.Errorf("recompute rating of product %d: %v", productID, err)
	}
}

func apply(r *Review, in Input) {
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Comment != nil {
		r.Comment = strings.TrimSpace(*in.Comment)
	}
}

func validate(r Review) map[string]string {
	errs := map[string]string{}
	if r.Rating < MinRating || r.Rating > MaxRating {
		errs["rating"] = fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating)
	}
	if len(r.Images) > MaxImages {
		errs["images"] = fmt.Sprintf("at most %d images allowed", MaxImages)
	}
	return errs
}
