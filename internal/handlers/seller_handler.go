package handlers

import (
	"strings"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/middleware"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SellerHandler handles HTTP requests for seller profiles.
type SellerHandler struct {
	service *services.SellerService
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(service *services.SellerService) *SellerHandler {
	return &SellerHandler{service: service}
}

// RegisterRoutes registers the seller routes.
func (h *SellerHandler) RegisterRoutes(router fiber.Router, g Guards) {
	sellers := router.Group("/sellers")
	sellers.Get("/", append(chain(g.Optional), h.HandleGetSeller)...)
	sellers.Put("/", append(chain(g.Auth), h.HandleUpsertSeller)...)
}

// HandleGetSeller returns a public profile by username, or the caller's own
// profile with current=true.
func (h *SellerHandler) HandleGetSeller(c *fiber.Ctx) error {
	if c.QueryBool("current", false) {
		identity, ok := middleware.IdentityFrom(c)
		if !ok {
			return apperr.Unauthenticated("authentication required")
		}
		seller, err := h.service.ResolveSeller(c.UserContext(), identity)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"seller": seller})
	}

	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		return apperr.Validation("username or current=true is required")
	}
	seller, products, err := h.service.GetPublicProfile(c.UserContext(), username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"seller": seller, "products": products})
}

// HandleUpsertSeller writes the caller's profile.
func (h *SellerHandler) HandleUpsertSeller(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var in services.ProfileInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	seller, err := h.service.UpsertProfile(c.UserContext(), identity, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "seller": seller})
}
