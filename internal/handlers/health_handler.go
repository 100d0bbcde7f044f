package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports dependency status.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler creates a new HealthHandler. cache may be nil when no
// cache is configured.
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

// HandleHealth answers 503 when the database is unreachable. A cache outage
// only degrades the service.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	database := pingStatus(ctx, h.db)
	cache := pingStatus(ctx, h.cache)

	status, code := "ok", fiber.StatusOK
	switch {
	case database != "up":
		status, code = "unavailable", fiber.StatusServiceUnavailable
	case cache == "down":
		status = "degraded"
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"database": database,
		"cache":    cache,
		"time":     time.Now().Format(time.RFC3339),
	})
}
