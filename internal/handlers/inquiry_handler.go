package handlers

import (
	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InquiryHandler handles HTTP requests for inquiries.
type InquiryHandler struct {
	service *services.InquiryService
}

// NewInquiryHandler creates a new InquiryHandler.
func NewInquiryHandler(service *services.InquiryService) *InquiryHandler {
	return &InquiryHandler{service: service}
}

// RegisterRoutes registers the inquiry routes.
func (h *InquiryHandler) RegisterRoutes(router fiber.Router, g Guards) {
	inquiries := router.Group("/inquiries")
	inquiries.Post("/", append(chain(g.InquiryLimit), h.HandleSubmitInquiry)...)
	inquiries.Get("/", append(chain(g.Auth, g.Seller), h.HandleListInquiries)...)
	inquiries.Get("/:id", append(chain(g.Auth, g.Seller), h.HandleGetInquiry)...)
	inquiries.Patch("/:id", append(chain(g.Auth, g.Seller), h.HandleSetInquiryRead)...)
	inquiries.Delete("/:id", append(chain(g.Auth, g.Seller), h.HandleDeleteInquiry)...)
}

// HandleSubmitInquiry records a buyer inquiry.
func (h *InquiryHandler) HandleSubmitInquiry(c *fiber.Ctx) error {
	var in services.InquiryInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	inquiry, err := h.service.SubmitInquiry(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "inquiry": inquiry})
}

// HandleListInquiries lists the caller's inquiries with the unread count.
func (h *InquiryHandler) HandleListInquiries(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	inquiries, unread, err := h.service.ListInquiries(c.UserContext(), seller, c.QueryBool("unread", false))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"inquiries": inquiries, "unread": unread})
}

// HandleGetInquiry returns an inquiry and marks it read.
func (h *InquiryHandler) HandleGetInquiry(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	inquiry, err := h.service.GetInquiry(c.UserContext(), seller, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"inquiry": inquiry})
}

// HandleSetInquiryRead updates the read flag.
func (h *InquiryHandler) HandleSetInquiryRead(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	var body struct {
		IsRead *bool `json:"is_read"`
	}
	if err := parseBody(c, &body); err != nil {
		return err
	}
	if body.IsRead == nil {
		return apperr.Validation("missing required field: is_read")
	}

	inquiry, err := h.service.SetInquiryRead(c.UserContext(), seller, c.Params("id"), *body.IsRead)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "inquiry": inquiry})
}

// HandleDeleteInquiry deletes an inquiry.
func (h *InquiryHandler) HandleDeleteInquiry(c *fiber.Ctx) error {
	seller, err := requireSeller(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteInquiry(c.UserContext(), seller, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
