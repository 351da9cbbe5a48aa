package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSentinelMatchesKind(t *testing.T) {
	errMissing := New(ErrNotFound, "juice not found")
	wrapped := fmt.Errorf("load: %w", errMissing)

	if !errors.Is(wrapped, errMissing) {
		t.Fatalf("expected wrapped error to match sentinel")
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to match kind")
	}
	if errors.Is(wrapped, ErrConflict) {
		t.Fatalf("unexpected kind match")
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(ErrNotFound, "x"), fiber.StatusNotFound},
		{&InsufficientStockError{Name: "a"}, fiber.StatusBadRequest},
		{Invalid("rating", "must be between 1 and 5"), fiber.StatusBadRequest},
		{New(ErrUnauthorized, "x"), fiber.StatusUnauthorized},
		{New(ErrForbidden, "x"), fiber.StatusForbidden},
		{New(ErrConflict, "x"), fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRespond_InsufficientStockBody(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return Respond(c, &InsufficientStockError{ProductID: 4, Name: "Green Detox", Requested: 3, Available: 1})
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["productId"].(float64) != 4 || body["requested"].(float64) != 3 || body["available"].(float64) != 1 {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRespond_HidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return Respond(c, errors.New("pq: connection refused"))
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]interface{}
	json.NewDecoder(res.Body).Decode(&body)
	if body["message"] != "internal server error" {
		t.Fatalf("unexpected message %v", body["message"])
	}
}
