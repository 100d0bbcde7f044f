package handlers

import (
	"strings"

	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	products := router.Group("/products")
	products.Get("/", h.HandleListProducts)
	products.Post("/", append(chain(g.Auth, g.Seller), h.HandleCreateProduct)...)
	products.Get("/:idOrSlug", append(chain(g.Optional, g.OptionalSeller), h.HandleGetProduct)...)
	products.Put("/:id", append(chain(g.Auth, g.Seller), h.HandleUpdateProduct)...)
	products.Delete("/:id", append(chain(g.Auth, g.Seller), h.HandleDeleteProduct)...)

	router.Get("/dashboard/products", append(chain(g.Auth, g.Seller), h.HandleDashboardProducts)...)
}

// filterFromQuery reads listing filters from the query string.
func filterFromQuery(c *fiber.Ctx) models.ProductFilter {
	filter := models.ProductFilter{
		Category: models.Category(strings.TrimSpace(c.Query("category"))),
		Search:   c.Query("search"),
		SellerID: strings.TrimSpace(c.Query("seller_id")),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	}
	for _, tier := range strings.Split(c.Query("pricing"), ",") {
		if tier = strings.TrimSpace(tier); tier != "" {
			filter.Pricing = append(filter.Pricing, models.PricingTier(tier))
		}
	}
	return filter
}

// HandleListProducts lists published products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), filterFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}

// HandleGetProduct retrieves a product by ID or slug.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("idOrSlug"), currentSellerID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"product": product})
}

// HandleCreateProduct creates a product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), seller, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "product": product})
}

// HandleUpdateProduct replaces the writable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	var in services.ProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), seller, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "product": product})
}

// HandleDeleteProduct deletes a product and its inquiries.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(c.UserContext(), seller, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleDashboardProducts lists the caller's products, drafts included.
func (h *ProductHandler) HandleDashboardProducts(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	products, err := h.service.ListSellerProducts(c.UserContext(), seller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"products": products})
}
