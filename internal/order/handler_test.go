package order

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
)

func bootstrap(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Get("X-User-ID"))
	if err != nil {
		return apperr.Respond(c, auth.ErrUnauthenticated)
	}
	auth.SetIdentity(c, auth.Identity{UserID: id, Role: c.Get("X-User-Role", auth.RoleUser)})
	return c.Next()
}

func setupApp() (*fiber.App, fixture) {
	f := newFixture()
	app := fiber.New()
	NewHandler(f.svc).RegisterProtectedRoutes(app, bootstrap)
	return app, f
}

func send(t *testing.T, app *fiber.App, method, path string, body interface{}, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]interface{}{}
	json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

var (
	user7  = map[string]string{"X-User-ID": "7"}
	user8  = map[string]string{"X-User-ID": "8"}
	admin1 = map[string]string{"X-User-ID": "1", "X-User-Role": auth.RoleAdmin}
)

func TestCreateOrder_Success(t *testing.T) {
	app, f := setupApp()

	status, body := send(t, app, "POST", "/api/v1/orders", map[string]interface{}{
		"items":         []map[string]int{{"productId": 1, "quantity": 2}, {"productId": 2, "quantity": 1}},
		"addressId":     1,
		"paymentMethod": "upi",
	}, user7)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 got %d %v", status, body)
	}
	if body["finalPrice"] != 250.0 || body["orderStatus"] != StatusPlaced {
		t.Fatalf("unexpected order %v", body)
	}
	if stockOf(t, f, 1) != 8 {
		t.Fatalf("stock not decremented")
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	app, _ := setupApp()
	status, body := send(t, app, "POST", "/api/v1/orders/buy-now/2", map[string]interface{}{
		"quantity":      9,
		"addressId":     1,
		"paymentMethod": "cod",
	}, user7)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
	if body["productId"] != 2.0 || body["available"] != 5.0 || body["requested"] != 9.0 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestOrderLifecycleRoutes(t *testing.T) {
	app, _ := setupApp()

	status, created := send(t, app, "POST", "/api/v1/orders/buy-now/1", map[string]interface{}{
		"addressId": 1, "paymentMethod": "cod",
	}, user7)
	if status != fiber.StatusCreated {
		t.Fatalf("buy-now: expected 201 got %d %v", status, created)
	}
	id := strconv.Itoa(int(created["orderId"].(float64)))

	if status, _ := send(t, app, "GET", "/api/v1/orders/"+id, nil, user8); status != fiber.StatusForbidden {
		t.Fatalf("other user: expected 403 got %d", status)
	}
	if status, _ := send(t, app, "GET", "/api/v1/orders/"+id, nil, admin1); status != fiber.StatusOK {
		t.Fatalf("admin: expected 200 got %d", status)
	}

	status, page := send(t, app, "GET", "/api/v1/orders", nil, user7)
	if status != fiber.StatusOK || page["totalOrders"] != 1.0 || page["totalPages"] != 1.0 {
		t.Fatalf("list: unexpected %d %v", status, page)
	}

	if status, _ := send(t, app, "PATCH", "/api/v1/orders/"+id+"/status", map[string]string{"status": "shipped"}, user7); status != fiber.StatusForbidden {
		t.Fatalf("non-admin status update: expected 403 got %d", status)
	}
	if status, _ := send(t, app, "PATCH", "/api/v1/orders/"+id+"/payment", map[string]string{"paymentStatus": "paid"}, admin1); status != fiber.StatusOK {
		t.Fatalf("payment update: expected 200 got %d", status)
	}
	if status, _ := send(t, app, "PATCH", "/api/v1/orders/"+id+"/status", map[string]string{"status": "shipped"}, admin1); status != fiber.StatusOK {
		t.Fatalf("status update: expected 200 got %d", status)
	}
	if status, _ := send(t, app, "PATCH", "/api/v1/orders/"+id+"/cancel", nil, user7); status != fiber.StatusConflict {
		t.Fatalf("cancel shipped: expected 409 got %d", status)
	}

	status, all := send(t, app, "GET", "/api/v1/admin/orders?status=shipped", nil, admin1)
	if status != fiber.StatusOK || all["totalOrders"] != 1.0 {
		t.Fatalf("admin list: unexpected %d %v", status, all)
	}
}

func TestCheckoutRoute_EmptyCart(t *testing.T) {
	app, _ := setupApp()
	status, body := send(t, app, "POST", "/api/v1/orders/checkout", map[string]interface{}{"addressId": 1, "paymentMethod": "cod"}, user7)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d %v", status, body)
	}
}
