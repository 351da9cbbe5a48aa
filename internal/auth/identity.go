package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const identityKey = "identity"

var (
	ErrUnauthenticated = apperr.New(apperr.ErrUnauthorized, "unauthorized")
	ErrTokenRevoked    = apperr.New(apperr.ErrUnauthorized, "token has been revoked")
	ErrAdminOnly       = apperr.New(apperr.ErrForbidden, "admin access required")
)

// Identity is the acting user resolved from a verified credential.
type Identity struct {
	UserID    int
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// SetIdentity stores id on the request.
func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityKey, id)
}

func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(identityKey).(Identity)
	if !ok || id.UserID <= 0 {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// RequireRole rejects requests whose identity does not carry role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := IdentityFromCtx(c)
		if err != nil {
			return apperr.Respond(c, err)
		}
		if id.Role != role {
			return apperr.Respond(c, ErrAdminOnly)
		}
		return c.Next()
	}
}
