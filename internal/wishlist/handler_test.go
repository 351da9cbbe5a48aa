package wishlist

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

func bootstrap(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Get("X-User-ID"))
	if err != nil {
		return apperr.Respond(c, auth.ErrUnauthenticated)
	}
	auth.SetIdentity(c, auth.Identity{UserID: id, Role: auth.RoleUser})
	return c.Next()
}

func makeApp() *fiber.App {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Carrot Glow", Category: "skin", Price: decimal.NewFromInt(100), Stock: 10},
		{ID: 2, Name: "Beet Boost", Category: "energy", Price: decimal.NewFromInt(50), Stock: 5},
	})
	app := fiber.New()
	NewHandler(NewService(NewInMemoryRepository(), products)).RegisterProtectedRoutes(app, bootstrap)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("X-User-ID", "42")
	res, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, string(b)
}

func TestWishlistRoutes(t *testing.T) {
	app := makeApp()

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/wishlist", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	if status, body := do(t, app, "POST", "/api/v1/wishlist/2"); status != fiber.StatusOK || !strings.Contains(body, "[2]") {
		t.Fatalf("add: unexpected %d %s", status, body)
	}
	if status, _ := do(t, app, "POST", "/api/v1/wishlist/2"); status != fiber.StatusConflict {
		t.Fatalf("duplicate add: expected 409, got %d", status)
	}
	if status, _ := do(t, app, "POST", "/api/v1/wishlist/77"); status != fiber.StatusNotFound {
		t.Fatalf("missing product: expected 404, got %d", status)
	}
	do(t, app, "POST", "/api/v1/wishlist/1")

	status, body := do(t, app, "GET", "/api/v1/wishlist")
	var list []product.Product
	json.Unmarshal([]byte(body), &list)
	if status != fiber.StatusOK || len(list) != 2 || list[0].ID != 2 {
		t.Fatalf("list: unexpected %d %+v", status, list)
	}

	if status, _ := do(t, app, "DELETE", "/api/v1/wishlist/2"); status != fiber.StatusOK {
		t.Fatalf("remove: expected 200, got %d", status)
	}
	if status, _ := do(t, app, "DELETE", "/api/v1/wishlist/2"); status != fiber.StatusNotFound {
		t.Fatalf("remove absent: expected 404, got %d", status)
	}
	if status, _ := do(t, app, "DELETE", "/api/v1/wishlist"); status != fiber.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", status)
	}
	if _, body := do(t, app, "GET", "/api/v1/wishlist"); body != "[]" {
		t.Fatalf("expected empty wishlist, got %s", body)
	}
}
