package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

// RoleResolver returns the current role of a user, or an apperr.ErrNotFound
// kind when the user no longer exists.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID int) (string, error)
}

type RoleResolverFunc func(ctx context.Context, userID int) (string, error)

func (f RoleResolverFunc) ResolveRole(ctx context.Context, userID int) (string, error) {
	return f(ctx, userID)
}

// Gate verifies bearer tokens and stores the resolved Identity on the request.
type Gate struct {
	secret      []byte
	revocations Revocations
	roles       RoleResolver
}

func NewGate(secret []byte, revocations Revocations, roles RoleResolver) *Gate {
	return &Gate{secret: secret, revocations: revocations, roles: roles}
}

func (g *Gate) Handler() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     g.secret,
		SigningMethod:  "HS256",
		ErrorHandler:   g.unauthorized,
		SuccessHandler: g.resolve,
	})
}

func (g *Gate) unauthorized(c *fiber.Ctx, _ error) error {
	return apperr.Respond(c, ErrUnauthenticated)
}

func (g *Gate) resolve(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return apperr.Respond(c, ErrUnauthenticated)
	}
	id, err := identityFromToken(token)
	if err != nil {
		return apperr.Respond(c, err)
	}

	ctx := c.UserContext()
	revoked, err := g.revocations.IsRevoked(ctx, id.TokenID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	if revoked {
		return apperr.Respond(c, ErrTokenRevoked)
	}

	role, err := g.roles.ResolveRole(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warnf("token for missing user %d rejected", id.UserID)
			return apperr.Respond(c, ErrUnauthenticated)
		}
		return apperr.Respond(c, err)
	}
	id.Role = role

	SetIdentity(c, id)
	return c.Next()
}

func identityFromToken(token *jwt.Token) (Identity, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if purpose, _ := claims["purpose"].(string); purpose != PurposeAccess {
		return Identity{}, ErrInvalidToken
	}
	uid, ok := claims["user_id"].(float64)
	if !ok || uid <= 0 {
		return Identity{}, ErrInvalidToken
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return Identity{}, ErrInvalidToken
	}
	id := Identity{UserID: int(uid), TokenID: jti}
	if exp, ok := claims["exp"].(float64); ok {
		id.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return id, nil
}
