package handlers

import (
	"errors"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/logger"
	"github.com/babushkai/saas-marketplace/internal/middleware"
	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"error": message}. Internal details
// are logged, never returned.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		status := apperr.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("request_id", logger.RequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(fiber.Map{"error": apperr.PublicMessage(err)})
	}
}

// parseBody decodes the JSON request body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// requireSeller returns the seller resolved by the route's guards. Routes
// registered without them fail closed.
func requireSeller(c *fiber.Ctx) (*models.Seller, error) {
	seller, ok := middleware.SellerFrom(c)
	if !ok {
		return nil, apperr.Unauthenticated("authentication required")
	}
	return seller, nil
}

// requireIdentity returns the identity stored by the auth guard.
func requireIdentity(c *fiber.Ctx) (models.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.Identity{}, apperr.Unauthenticated("authentication required")
	}
	return identity, nil
}

// currentSellerID is empty for anonymous requests.
func currentSellerID(c *fiber.Ctx) string {
	if seller, ok := middleware.SellerFrom(c); ok {
		return seller.ID
	}
	return ""
}
