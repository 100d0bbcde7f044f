// Package app wires configuration, infrastructure and services into a
// runnable HTTP application.
package app

import (
	"errors"

	"github.com/babushkai/saas-marketplace/internal/cache"
	"github.com/babushkai/saas-marketplace/internal/config"
	"github.com/babushkai/saas-marketplace/internal/database"
	"github.com/babushkai/saas-marketplace/internal/events"
	"github.com/babushkai/saas-marketplace/internal/handlers"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/repositories"
	"github.com/babushkai/saas-marketplace/internal/server"
	"github.com/babushkai/saas-marketplace/internal/services"
	"github.com/babushkai/saas-marketplace/internal/storage"
	"github.com/babushkai/saas-marketplace/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cachePrefix   = "marketplace:cache:"
	metricsPrefix = "marketplace"
)

// App is a fully wired service.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	HTTP   *fiber.App

	closers []func() error
}

// Build connects to every configured backend and assembles the HTTP app.
// Redis and RabbitMQ are optional: when unreachable the service runs without
// a cache and logs events instead of publishing them.
func Build(cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error { return database.Close(db) })

	var (
		productCache   cache.Cache = cache.Nop{}
		cacheHealth    handlers.Pinger
		limiterStorage fiber.Storage
	)
	if cfg.Redis.Addr != "" {
		redisStorage, err := cache.NewRedisStorage(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			productCache = cache.NewStorageCache(redisStorage, cachePrefix, cfg.Redis.CacheTTL)
			cacheHealth = cache.RedisPinger{Storage: redisStorage}
			limiterStorage = redisStorage
			a.closers = append(a.closers, redisStorage.Close)
			log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var publisher events.Publisher = events.NewLogPublisher(log.Named("events"))
	if cfg.RabbitMQ.URL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
		if err != nil {
			log.Warn("rabbitmq unavailable, logging events instead", zap.Error(err))
		} else {
			publisher = client
			a.closers = append(a.closers, client.Close)
			log.Info("rabbitmq connected", zap.String("exchange", cfg.RabbitMQ.Exchange))
		}
	}

	objectStore, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		a.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry, metricsPrefix)

	productRepo := repositories.NewGORMProductRepository(db)
	sellerRepo := repositories.NewGORMSellerRepository(db)
	inquiryRepo := repositories.NewGORMInquiryRepository(db)

	productService, err := services.NewProductService(productRepo, productCache, publisher, m, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.HTTP = server.New(server.Deps{
		Config:         cfg,
		Log:            log,
		Metrics:        m,
		Gatherer:       registry,
		Auth:           services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Products:       productService,
		Inquiries:      services.NewInquiryService(inquiryRepo, productRepo, publisher, m, log),
		Sellers:        services.NewSellerService(sellerRepo, productRepo, log),
		Uploads:        services.NewUploadService(objectStore, cfg.Upload.MaxBytes),
		DBHealth:       database.Pinger{DB: db},
		CacheHealth:    cacheHealth,
		LimiterStorage: limiterStorage,
	})
	return a, nil
}

// Close releases every backend connection in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
