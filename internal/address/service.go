package address

import (
	"context"
	"strings"

	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

// Service orchestrates address management for the acting user.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int) ([]Address, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id int) (Address, error) {
	return s.repo.Get(ctx, userID, id)
}

// Create stores a new address. A user's first address becomes the default.
func (s *Service) Create(ctx context.Context, userID int, in Input) (Address, error) {
	a := Address{UserID: userID, Label: "home", Country: DefaultCountry}
	apply(&a, in)
	if errs := validate(a); len(errs) > 0 {
		return Address{}, apperr.Validation(errs)
	}
	if !a.IsDefault {
		existing, err := s.repo.List(ctx, userID)
		if err != nil {
			return Address{}, err
		}
		a.IsDefault = len(existing) == 0
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) Update(ctx context.Context, userID, id int, in Input) (Address, error) {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Address{}, err
	}
	apply(&a, in)
	if errs := validate(a); len(errs) > 0 {
		return Address{}, apperr.Validation(errs)
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, userID, id int) error {
	return s.repo.Delete(ctx, userID, id)
}

func apply(a *Address, in Input) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&a.Label, in.Label)
	set(&a.Street, in.Street)
	set(&a.City, in.City)
	set(&a.State, in.State)
	set(&a.Pincode, in.Pincode)
	set(&a.Country, in.Country)
	set(&a.Phone, in.Phone)
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	}
}

func validate(a Address) map[string]string {
	errs := map[string]string{}
	for field, v := range map[string]string{"street": a.Street, "city": a.City, "state": a.State, "pincode": a.Pincode} {
		if v == "" {
			errs[field] = field + " is required"
		}
	}
	return errs
}
