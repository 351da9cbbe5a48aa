package address

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
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
	auth.SetIdentity(c, auth.Identity{UserID: id, Role: auth.RoleUser})
	return c.Next()
}

func TestAddressRoutes(t *testing.T) {
	repo := NewInMemoryRepository([]Address{
		{ID: 1, UserID: 42, Label: "home", Street: "1 Main", City: "Pune", State: "MH", Pincode: "411001", Country: DefaultCountry, IsDefault: true},
	})
	app := fiber.New()
	NewHandler(NewService(repo)).RegisterProtectedRoutes(app, bootstrap)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/addresses", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("POST", "/api/v1/addresses", strings.NewReader(`{"street":"9 Hill Rd","city":"Goa"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing fields: expected 400, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/addresses", strings.NewReader(`{"label":"work","street":"9 Hill Rd","city":"Panaji","state":"GA","pincode":"403001","isDefault":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for add, got %d", res.StatusCode)
	}
	var created Address
	json.NewDecoder(res.Body).Decode(&created)
	if created.Country != DefaultCountry || !created.IsDefault {
		t.Fatalf("unexpected address %+v", created)
	}
	home, _ := repo.Get(context.Background(), 42, 1)
	if home.IsDefault {
		t.Fatalf("expected previous default to be cleared")
	}

	req = httptest.NewRequest("PATCH", "/api/v1/addresses/"+strconv.Itoa(created.ID), strings.NewReader(`{"city":"Margao"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), "Margao") {
		t.Fatalf("patch: unexpected %d %s", res.StatusCode, b)
	}

	req = httptest.NewRequest("PATCH", "/api/v1/addresses/1", strings.NewReader(`{"city":"Nope"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("another user's address: expected 404, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/addresses/1", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", res.StatusCode)
	}
	list, _ := repo.List(context.Background(), 42)
	if len(list) != 1 {
		t.Fatalf("expected 1 address left, got %d", len(list))
	}
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	s := func(v string) *string { return &v }
	a, err := svc.Create(context.Background(), 5, Input{Street: s("x"), City: s("y"), State: s("z"), Pincode: s("1")})
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsDefault || a.Label != "home" {
		t.Fatalf("unexpected address %+v", a)
	}
	b, _ := svc.Create(context.Background(), 5, Input{Street: s("x2"), City: s("y"), State: s("z"), Pincode: s("1")})
	if b.IsDefault {
		t.Fatalf("second address should not be default")
	}
}
