// Package server assembles the Fiber application: middleware, routes and
// error handling.
package server

import (
	"strings"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/config"
	"github.com/babushkai/saas-marketplace/internal/handlers"
	"github.com/babushkai/saas-marketplace/internal/logger"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/middleware"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// minBodyLimit is Fiber's default request body limit.
const minBodyLimit = 4 << 20

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Auth      *services.AuthService
	Products  *services.ProductService
	Inquiries *services.InquiryService
	Sellers   *services.SellerService
	Uploads   *services.UploadService

	DBHealth    handlers.Pinger
	CacheHealth handlers.Pinger
	// LimiterStorage backs the inquiry rate limiter. Nil keeps counters in
	// process memory.
	LimiterStorage fiber.Storage
}

// New builds the Fiber app with every route registered.
func New(d Deps) *fiber.App {
	cfg := d.Config

	bodyLimit := int(cfg.Upload.MaxBytes) + 1<<20
	if bodyLimit < minBodyLimit {
		bodyLimit = minBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.ServiceName,
		ErrorHandler: handlers.ErrorHandler(d.Log),
		BodyLimit:    bodyLimit,
	})

	app.Use(requestid.New())
	// Metrics wrap the logger so they observe the status the ErrorHandler set.
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
	}
	app.Use(logger.Middleware(d.Log))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.App.Environment != "production",
	}))
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowOrigins,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	}))

	if strings.HasPrefix(cfg.Upload.BaseURL, "/") {
		app.Static(strings.TrimRight(cfg.Upload.BaseURL, "/"), cfg.Upload.Dir)
	}

	handlers.NewHealthHandler(d.DBHealth, d.CacheHealth).RegisterRoutes(app)
	if d.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(d.Gatherer))
	}

	guards := handlers.Guards{
		Auth:           middleware.AuthRequired(d.Auth),
		Optional:       middleware.OptionalAuth(d.Auth),
		Seller:         middleware.SellerRequired(d.Sellers),
		OptionalSeller: middleware.OptionalSeller(d.Sellers),
		InquiryLimit: limiter.New(limiter.Config{
			Max:        cfg.RateLimit.InquiryMax,
			Expiration: cfg.RateLimit.InquiryWindow,
			Storage:    d.LimiterStorage,
			LimitReached: func(c *fiber.Ctx) error {
				return apperr.RateLimited("too many inquiries, please try again later")
			},
		}),
	}

	api := app.Group("/api/v1")
	handlers.NewProductHandler(d.Products).RegisterRoutes(api, guards)
	handlers.NewInquiryHandler(d.Inquiries).RegisterRoutes(api, guards)
	handlers.NewSellerHandler(d.Sellers).RegisterRoutes(api, guards)
	handlers.NewUploadHandler(d.Uploads).RegisterRoutes(api, guards)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("route not found")
	})

	return app
}
