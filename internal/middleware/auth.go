// Package middleware provides authentication, logging, tracing and rate limiting middleware.
package middleware

import (
	"errors"
	"strings"

	"mentorcircles/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller as asserted by the external identity provider.
type Identity struct {
	UserID  string
	Email   string
	Name    string
	Role    string
	TokenID string
}

type identityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrMissingToken   = errors.New("authorization required")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingSubject = errors.New("token has no subject")
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// VerifyToken validates an HMAC-signed token and returns the caller identity.
// Issuer and audience are enforced only when configured.
func VerifyToken(tokenString string, cfg *config.Config) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}
	if cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.JWTAudience))
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return nil, ErrMissingSubject
	}

	return &Identity{
		UserID:  sub,
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
		TokenID: claims.ID,
	}, nil
}

// SetCaller stores the authenticated identity on the request.
func SetCaller(c *fiber.Ctx, id *Identity) {
	c.Locals("userID", id.UserID)
	c.Locals("identity", id)
	c.SetUserContext(WithUserID(c.UserContext(), id.UserID))
}

// CallerID returns the authenticated user id, if any.
func CallerID(c *fiber.Ctx) (string, bool) {
	uid, ok := c.Locals("userID").(string)
	return uid, ok && uid != ""
}
