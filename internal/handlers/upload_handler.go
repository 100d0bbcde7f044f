package handlers

import (
	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles image uploads.
type UploadHandler struct {
	service *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// RegisterRoutes registers the upload routes.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, g Guards) {
	router.Post("/upload", append(chain(g.Auth), h.HandleUpload)...)
	router.Delete("/upload", append(chain(g.Auth), h.HandleDelete)...)
}

// HandleUpload stores the multipart "file" field and returns its URL.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("missing required field: file")
	}
	f, err := file.Open()
	if err != nil {
		return apperr.Internal("failed to open upload", err)
	}
	defer f.Close()

	res, err := h.service.Upload(c.UserContext(), identity, c.FormValue("folder"), file.Size, f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "url": res.URL, "path": res.Path})
}

// HandleDelete removes an uploaded object owned by the caller.
func (h *UploadHandler) HandleDelete(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.UserContext(), identity, c.Query("path")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
