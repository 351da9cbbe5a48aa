package product

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
	"github.com/wichananm65/juice-shop-backend/internal/auth"
	"github.com/wichananm65/juice-shop-backend/internal/media"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func bootstrap(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Get("X-User-ID"))
	if err != nil {
		return apperr.Respond(c, auth.ErrUnauthenticated)
	}
	auth.SetIdentity(c, auth.Identity{UserID: id, Role: c.Get("X-User-Role", auth.RoleUser)})
	return c.Next()
}

func setupApp(t *testing.T) (*fiber.App, *InMemoryRepository) {
	t.Helper()
	repo := seedRepo()
	h := NewHandler(NewService(repo), media.NewLocalStorage(t.TempDir(), "http://shop.test"))
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app, bootstrap)
	return app, repo
}

func productForm(t *testing.T, fields map[string]string, images int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	for i := 0; i < images; i++ {
		fw, _ := w.CreateFormFile("images", "img"+strconv.Itoa(i)+".png")
		fw.Write(pngBytes)
	}
	w.Close()
	return body, w.FormDataContentType()
}

func TestGetProducts(t *testing.T) {
	app, _ := setupApp(t)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products?category=energy", nil))
	if err != nil {
		t.Fatal(err)
	}
	var list []Product
	json.NewDecoder(res.Body).Decode(&list)
	if len(list) != 1 || list[0].Name != "Beet Boost" {
		t.Fatalf("unexpected list %+v", list)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products?category=candy", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("unknown category: expected 400 got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/1", nil))
	var p Product
	json.NewDecoder(res.Body).Decode(&p)
	if res.StatusCode != fiber.StatusOK || !p.Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected product %d %+v", res.StatusCode, p)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/404", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.StatusCode)
	}
}

func TestCreateProduct(t *testing.T) {
	app, repo := setupApp(t)
	fields := map[string]string{
		"name":        "Green Detox",
		"category":    "detox",
		"price":       "149.50",
		"stock":       "20",
		"ingredients": `[{"name":"kale","quantity":"50g"}]`,
		"benefits":    "cleanse, energy",
	}

	body, ct := productForm(t, fields, 1)
	req := httptest.NewRequest("POST", "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-User-ID", "5")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("non-admin: expected 403 got %d", res.StatusCode)
	}

	body, ct = productForm(t, fields, 0)
	req = httptest.NewRequest("POST", "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing images: expected 400 got %d", res.StatusCode)
	}

	body, ct = productForm(t, fields, 2)
	req = httptest.NewRequest("POST", "/api/v1/products", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, err := app.Test(req)
	if err != nil || res.StatusCode != fiber.StatusCreated {
		t.Fatalf("create: expected 201 got %d (%v)", res.StatusCode, err)
	}
	var created Product
	json.NewDecoder(res.Body).Decode(&created)
	if len(created.Images) != 2 || len(created.Benefits) != 2 || created.Ingredients[0].Name != "kale" {
		t.Fatalf("unexpected product %+v", created)
	}
	if !created.Price.Equal(decimal.RequireFromString("149.5")) {
		t.Fatalf("unexpected price %s", created.Price)
	}
	if n, _ := repo.Count(context.Background()); n != 3 {
		t.Fatalf("expected 3 products got %d", n)
	}
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	app, repo := setupApp(t)

	req := httptest.NewRequest("PATCH", "/api/v1/products/2", strings.NewReader(`{"stock": 42, "price": "55.25"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("update: expected 200 got %d", res.StatusCode)
	}
	p, _ := repo.GetByID(context.Background(), 2)
	if p.Stock != 42 || !p.Price.Equal(decimal.RequireFromString("55.25")) || p.Name != "Beet Boost" {
		t.Fatalf("unexpected product after update %+v", p)
	}

	req = httptest.NewRequest("PATCH", "/api/v1/products/2", strings.NewReader(`{"stock": -1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("negative stock: expected 400 got %d", res.StatusCode)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/products/2", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("X-User-Role", auth.RoleAdmin)
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("delete: expected 200 got %d", res.StatusCode)
	}
	if _, err := repo.GetByID(context.Background(), 2); err != ErrNotFound {
		t.Fatalf("expected product to be gone, got %v", err)
	}
}
