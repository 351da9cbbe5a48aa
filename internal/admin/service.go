package admin

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/review"
	"github.com/wichananm65/juice-shop-backend/internal/user"
	"golang.org/x/sync/errgroup"
)

var ErrDeleteSelf = apperr.New(apperr.ErrConflict, "admins cannot delete their own account")

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type Orders interface {
	Counter
	DeliveredRevenue(ctx context.Context) (decimal.Decimal, error)
}

type Users interface {
	Counter
	List(ctx context.Context) ([]user.User, error)
	Delete(ctx context.Context, id int) error
}

// Reviews drops the reviews of a deleted account and refreshes the ratings
// they contributed to.
type Reviews interface {
	RemoveAuthor(ctx context.Context, userID int) ([]review.Review, error)
}

type Service struct {
	users    Users
	orders   Orders
	products Counter
	reviews  Reviews
}

func NewService(users Users, orders Orders, products Counter, reviews Reviews) *Service {
	return &Service{users: users, orders: orders, products: products, reviews: reviews}
}

// Dashboard gathers the four figures concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalUsers, err = s.users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalOrders, err = s.orders.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalProducts, err = s.products.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Revenue, err = s.orders.DeliveredRevenue(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

func (s *Service) Users(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]user.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

func (s *Service) DeleteUser(ctx context.Context, actingID, id int) error {
	if actingID == id {
		return ErrDeleteSelf
	}
	removed, err := s.reviews.RemoveAuthor(ctx, id)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		log.Infof("removed %d reviews of user %d", len(removed), id)
	}
	return s.users.Delete(ctx, id)
}
