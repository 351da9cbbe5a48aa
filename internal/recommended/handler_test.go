package recommended

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/juice-shop-backend/internal/product"
)

func seededProducts() *product.InMemoryRepository {
	return product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Carrot Glow", Category: "skin", Price: decimal.NewFromInt(100), AverageRating: 4.5, ReviewCount: 2, Images: []string{"http://x/1.png"}},
		{ID: 2, Name: "Beet Boost", Category: "energy", Price: decimal.NewFromInt(50), AverageRating: 4.5, ReviewCount: 9},
		{ID: 3, Name: "Kale Cleanse", Category: "detox", Price: decimal.NewFromInt(80)},
	})
}

func TestGetTopRated(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(NewInMemoryRepository(seededProducts()))).RegisterPublicRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/top-rated?limit=2", nil))
	if err != nil {
		t.Fatal(err)
	}
	var items []RecommendedItem
	if err := json.NewDecoder(res.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ProductID != 2 || items[1].ProductID != 1 {
		t.Fatalf("expected ties broken by review count, got %+v", items)
	}
	if items[0].Image != nil || items[1].Image == nil || *items[1].Image != "http://x/1.png" {
		t.Fatalf("unexpected images %+v", items)
	}
}

func TestServiceClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("ORDER BY average_rating DESC").WithArgs(maxLimit, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "price", "images", "average_rating", "review_count"}).
			AddRow(4, "Mango Mist", "vitamin", "60.00", nil, 5.0, 1))

	items, err := NewService(NewPostgresRepository(db)).TopRated(context.Background(), 500, -3)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Image != nil || items[0].AverageRating != 5.0 {
		t.Fatalf("unexpected items %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
