package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/order"
	"github.com/wichananm65/juice-shop-backend/internal/product"
	"github.com/wichananm65/juice-shop-backend/internal/review"
	"github.com/wichananm65/juice-shop-backend/internal/user"
)

func bootstrap(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Get("X-User-ID"))
	if err != nil {
		return apperr.Respond(c, auth.ErrUnauthenticated)
	}
	auth.SetIdentity(c, auth.Identity{UserID: id, Role: c.Get("X-User-Role", auth.RoleUser)})
	return c.Next()
}

type fixture struct {
	users    *user.InMemoryRepository
	products *product.InMemoryRepository
	reviews  *review.Service
}

func setup(t *testing.T) (*fiber.App, fixture) {
	t.Helper()
	ctx := context.Background()
	users := user.NewInMemoryRepository([]user.User{
		{ID: 1, Username: "root", Email: "root@juice.test", Password: "hash", Role: auth.RoleAdmin},
		{ID: 2, Username: "ana", Email: "ana@juice.test", Password: "hash", Role: auth.RoleUser},
	})
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Carrot Glow", Category: "skin", Price: decimal.NewFromInt(100), Stock: 10},
		{ID: 2, Name: "Beet Boost", Category: "energy", Price: decimal.NewFromInt(50), Stock: 5},
	})
	orders := order.NewInMemoryRepository(products)
	addr := order.ShippingAddress{Street: "1 Main", City: "Pune", State: "MH", Pincode: "411001", Country: "India"}

	delivered, err := orders.Place(ctx, 2, []order.Line{{ProductID: 1, Quantity: 2}}, addr, order.MethodCOD)
	require.NoError(t, err)
	_, err = orders.SetStatus(ctx, delivered.ID, order.StatusPlaced, order.StatusDelivered)
	require.NoError(t, err)
	_, err = orders.Place(ctx, 2, []order.Line{{ProductID: 2, Quantity: 1}}, addr, order.MethodCOD)
	require.NoError(t, err)

	reviewRepo := review.NewInMemoryRepository()
	reviews := review.NewService(reviewRepo, products, orders, review.NewAggregator(reviewRepo, products))

	app := fiber.New()
	NewHandler(NewService(users, orders, products, reviews)).RegisterProtectedRoutes(app, bootstrap)
	return app, fixture{users: users, products: products, reviews: reviews}
}

func TestDashboard(t *testing.T) {
	app, _ := setup(t)

	req := httptest.NewRequest("GET", "/api/v1/admin/dashboard", nil)
	req.Header.Set("X-User-ID", "2")
	res, _ := app.Test(req)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)

	req = httptest.NewRequest("GET", "/api/v1/admin/dashboard", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	var d Dashboard
	require.NoError(t, json.NewDecoder(res.Body).Decode(&d))
	assert.Equal(t, 2, d.TotalUsers)
	assert.Equal(t, 2, d.TotalOrders)
	assert.Equal(t, 2, d.TotalProducts)
	assert.True(t, d.Revenue.Equal(decimal.NewFromInt(200)), "only delivered orders count, got %s", d.Revenue)
}

func TestUsersAndDelete(t *testing.T) {
	app, fx := setup(t)
	five := 5
	_, err := fx.reviews.Create(context.Background(), 2, 1, review.Input{Rating: &five}, nil)
	require.NoError(t, err)
	p, _ := fx.products.GetByID(context.Background(), 1)
	require.Equal(t, 1, p.ReviewCount)

	req := httptest.NewRequest("GET", "/api/v1/admin/users", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ := app.Test(req)
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Contains(t, string(b), "ana@juice.test")
	assert.False(t, strings.Contains(string(b), `"hash"`), "password hashes must not leak")

	req = httptest.NewRequest("DELETE", "/api/v1/admin/users/1", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ = app.Test(req)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/v1/admin/users/2", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ = app.Test(req)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	_, err = fx.users.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, user.ErrNotFound)
	p, _ = fx.products.GetByID(context.Background(), 1)
	assert.Equal(t, 0, p.ReviewCount, "deleted user's reviews no longer count")
	assert.Equal(t, 0.0, p.AverageRating)

	req = httptest.NewRequest("DELETE", "/api/v1/admin/users/2", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ = app.Test(req)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}
