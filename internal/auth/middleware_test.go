package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

func setupGateApp(m *TokenManager, revocations Revocations) *fiber.App {
	roles := RoleResolverFunc(func(_ context.Context, userID int) (string, error) {
		switch userID {
		case 1:
			return RoleAdmin, nil
		case 2:
			return RoleUser, nil
		}
		return "", apperr.New(apperr.ErrNotFound, "user not found")
	})
	gate := NewGate(m.Secret(), revocations, roles)

	app := fiber.New()
	app.Get("/me", gate.Handler(), func(c *fiber.Ctx) error {
		id, err := IdentityFromCtx(c)
		if err != nil {
			return apperr.Respond(c, err)
		}
		return c.JSON(fiber.Map{"userId": id.UserID, "role": id.Role})
	})
	app.Get("/admin", gate.Handler(), RequireRole(RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return res.StatusCode
}

func TestGate(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, time.Minute)
	revocations := NewMemoryRevocations()
	app := setupGateApp(m, revocations)

	adminToken, _, _ := m.IssueAccess(1)
	userToken, userClaims, _ := m.IssueAccess(2)
	ghostToken, _, _ := m.IssueAccess(99)
	resetToken, _, _ := m.IssueReset(2)

	if code := doGet(t, app, "/me", ""); code != fiber.StatusUnauthorized {
		t.Fatalf("missing token: expected 401 got %d", code)
	}
	if code := doGet(t, app, "/me", "garbage"); code != fiber.StatusUnauthorized {
		t.Fatalf("malformed token: expected 401 got %d", code)
	}
	if code := doGet(t, app, "/me", userToken); code != fiber.StatusOK {
		t.Fatalf("valid token: expected 200 got %d", code)
	}
	if code := doGet(t, app, "/me", resetToken); code != fiber.StatusUnauthorized {
		t.Fatalf("reset token used as access: expected 401 got %d", code)
	}
	if code := doGet(t, app, "/me", ghostToken); code != fiber.StatusUnauthorized {
		t.Fatalf("deleted user: expected 401 got %d", code)
	}

	if code := doGet(t, app, "/admin", userToken); code != fiber.StatusForbidden {
		t.Fatalf("user on admin route: expected 403 got %d", code)
	}
	if code := doGet(t, app, "/admin", adminToken); code != fiber.StatusNoContent {
		t.Fatalf("admin on admin route: expected 204 got %d", code)
	}

	revocations.Revoke(context.Background(), userClaims.ID, userClaims.ExpiresAt.Time)
	if code := doGet(t, app, "/me", userToken); code != fiber.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401 got %d", code)
	}
}
