package middleware

import (
	"context"
	"strings"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	identityKey = "identity"
	sellerKey   = "seller"
)

// TokenValidator verifies a bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (models.Identity, error)
}

// SellerResolver maps an identity to its seller account.
type SellerResolver interface {
	ResolveSeller(ctx context.Context, identity models.Identity) (*models.Seller, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. ok is false when no Authorization header was sent.
func bearerToken(c *fiber.Ctx) (token string, ok bool, err error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, apperr.Unauthenticated("authorization header format must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), true, nil
}

// AuthRequired rejects requests without a valid bearer token and stores the
// identity for subsequent handlers.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Unauthenticated("authentication required")
		}

		identity, err := validator.ValidateToken(token)
		if err != nil {
			return apperr.Unauthenticated("invalid or expired token")
		}
		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// OptionalAuth stores the identity when a valid token is presented and
// leaves the request anonymous otherwise.
func OptionalAuth(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if err == nil && ok {
			if identity, err := validator.ValidateToken(token); err == nil {
				c.Locals(identityKey, identity)
			}
		}
		return c.Next()
	}
}

// SellerRequired resolves the authenticated identity to a seller. It must
// run after AuthRequired.
func SellerRequired(resolver SellerResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return apperr.Unauthenticated("authentication required")
		}
		seller, err := resolver.ResolveSeller(c.UserContext(), identity)
		if err != nil {
			return err
		}
		c.Locals(sellerKey, seller)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired or OptionalAuth.
func IdentityFrom(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	return identity, ok && identity.Subject != ""
}

// SellerFrom returns the seller stored by SellerRequired.
func SellerFrom(c *fiber.Ctx) (*models.Seller, bool) {
	seller, ok := c.Locals(sellerKey).(*models.Seller)
	return seller, ok && seller != nil
}

// OptionalSeller resolves the seller when an identity is present. Failures
// leave the request anonymous.
func OptionalSeller(resolver SellerResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity, ok := IdentityFrom(c); ok {
			if seller, err := resolver.ResolveSeller(c.UserContext(), identity); err == nil {
				c.Locals(sellerKey, seller)
			}
		}
		return c.Next()
	}
}
