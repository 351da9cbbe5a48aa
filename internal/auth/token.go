package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/wichananm65/juice-shop-backend/internal/apperr"
)

const (
	PurposeAccess = "access"
	PurposeReset  = "reset"

	issuer = "juice-shop"
)

var (
	ErrInvalidToken = apperr.New(apperr.ErrUnauthorized, "invalid token")
	ErrExpiredToken = apperr.New(apperr.ErrUnauthorized, "token has expired")
)

// Claims is the payload of every token the service signs.
type Claims struct {
	UserID  int    `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

func NewTokenManager(secret string, ttl, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		ttl:      ttl,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

func (m *TokenManager) Secret() []byte {
	return m.secret
}

// IssueAccess signs a bearer token for userID.
func (m *TokenManager) IssueAccess(userID int) (string, Claims, error) {
	return m.issue(userID, PurposeAccess, m.ttl)
}

// IssueReset signs a short-lived password reset token.
func (m *TokenManager) IssueReset(userID int) (string, Claims, error) {
	return m.issue(userID, PurposeReset, m.resetTTL)
}

func (m *TokenManager) issue(userID int, purpose string, ttl time.Duration) (string, Claims, error) {
	now := m.now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, claims, nil
}

// Parse verifies signature, expiry and purpose of a token.
func (m *TokenManager) Parse(token, purpose string) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !parsed.Valid || claims.Purpose != purpose || claims.UserID <= 0 {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
