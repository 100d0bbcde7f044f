package services

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/cache"
	"github.com/babushkai/saas-marketplace/internal/events"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/repositories"
	"github.com/babushkai/saas-marketplace/internal/slug"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
	// slugRetries bounds re-inserts after a unique slug violation.
	slugRetries = 3
)

// ProductInput is the writable set of a product, used for create and for
// full-replace update.
type ProductInput struct {
	Name        string             `json:"name" validate:"required,max=255"`
	Tagline     string             `json:"tagline" validate:"required,max=100"`
	Description string             `json:"description" validate:"required"`
	Category    models.Category    `json:"category" validate:"required,category"`
	Pricing     models.PricingTier `json:"pricing" validate:"required,pricing"`
	PriceText   *string            `json:"price_text"`
	LogoURL     *string            `json:"logo_url"`
	Screenshots []string           `json:"screenshots"`
	WebsiteURL  string             `json:"website_url" validate:"max=512"`
	IsPublished bool               `json:"is_published"`
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Tagline = strings.TrimSpace(in.Tagline)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = models.Category(strings.TrimSpace(string(in.Category)))
	in.Pricing = models.PricingTier(strings.TrimSpace(string(in.Pricing)))
	in.PriceText = trimPtr(in.PriceText)
	in.LogoURL = trimPtr(in.LogoURL)
	in.WebsiteURL = strings.TrimSpace(in.WebsiteURL)

	screenshots := make([]string, 0, len(in.Screenshots))
	for _, s := range in.Screenshots {
		if s = strings.TrimSpace(s); s != "" {
			screenshots = append(screenshots, s)
		}
	}
	in.Screenshots = screenshots
}

func (in *ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Tagline = in.Tagline
	p.Description = in.Description
	p.Category = in.Category
	p.Pricing = in.Pricing
	p.PriceText = in.PriceText
	p.LogoURL = in.LogoURL
	p.Screenshots = models.StringList(in.Screenshots)
	p.WebsiteURL = in.WebsiteURL
	p.IsPublished = in.IsPublished
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	cache     cache.Cache
	group     singleflight.Group
	publisher events.Publisher
	metrics   metrics.Recorder
	validate  *validator.Validate
	suffixer  *slug.Suffixer
	log       *zap.Logger
	now       func() time.Time
}

// NewProductService creates a new ProductService.
func NewProductService(
	repo repositories.ProductRepository,
	c cache.Cache,
	publisher events.Publisher,
	rec metrics.Recorder,
	log *zap.Logger,
) (*ProductService, error) {
	suffixer, err := slug.NewSuffixer()
	if err != nil {
		return nil, err
	}
	return &ProductService{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		metrics:   rec,
		validate:  newValidator(),
		suffixer:  suffixer,
		log:       log.Named("products"),
		now:       time.Now,
	}, nil
}

// normalizeFilter restricts a public listing to published products and
// clamps paging.
func normalizeFilter(filter models.ProductFilter) models.ProductFilter {
	filter.IncludeDrafts = false
	filter.Search = filter.SearchTerm()
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}

func listCacheKey(f models.ProductFilter) string {
	tiers := make([]string, 0, len(f.Pricing))
	for _, t := range f.Pricing {
		tiers = append(tiers, string(t))
	}
	slices.Sort(tiers)
	tiers = slices.Compact(tiers)

	return strings.Join([]string{
		"products:list",
		string(f.Category),
		strings.Join(tiers, ","),
		strings.ToLower(f.Search),
		f.SellerID,
		strconv.Itoa(f.Limit),
		strconv.Itoa(f.Offset),
	}, "|")
}

// flightKey groups concurrent loads by cache generation, so a caller that
// missed after an invalidation never shares a load started before it.
func flightKey(key string, e cache.Entry) string {
	if k := e.Key(); k != "" {
		return k
	}
	return key
}

// ListProducts returns published products matching every supplied filter,
// newest first.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter = normalizeFilter(filter)
	key := listCacheKey(filter)

	var cached []models.Product
	entry, found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return cached, nil
	}

	shared := context.WithoutCancel(ctx)
	val, err, _ := s.group.Do(flightKey(key, entry), func() (any, error) {
		return s.repo.List(shared, filter)
	})
	if err != nil {
		return nil, storeError(err, "products not found", "failed to list products")
	}
	products := val.([]models.Product)
	if products == nil {
		products = []models.Product{}
	}

	if err := s.cache.Set(ctx, entry, products); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return products, nil
}

// ListSellerProducts returns every product of the seller, drafts included.
func (s *ProductService) ListSellerProducts(ctx context.Context, sellerID string) ([]models.Product, error) {
	products, err := s.repo.List(ctx, models.ProductFilter{SellerID: sellerID, IncludeDrafts: true})
	if err != nil {
		return nil, storeError(err, "products not found", "failed to list seller products")
	}
	return products, nil
}

// lookup resolves idOrSlug as an ID first and as a slug second.
func (s *ProductService) lookup(ctx context.Context, idOrSlug string) (*models.Product, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		p, err := s.repo.GetByID(ctx, idOrSlug)
		if err == nil || !errors.Is(err, repositories.ErrNotFound) {
			return p, err
		}
	}
	return s.repo.GetBySlug(ctx, idOrSlug)
}

// GetProduct fetches a product by ID or slug. Drafts are visible only to the
// owning seller; viewerSellerID is empty for anonymous callers.
func (s *ProductService) GetProduct(ctx context.Context, idOrSlug, viewerSellerID string) (*models.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, apperr.NotFound("product not found")
	}

	if viewerSellerID != "" {
		p, err := s.lookup(ctx, idOrSlug)
		if err != nil {
			return nil, storeError(err, "product not found", "failed to get product")
		}
		if !p.IsPublished && !p.OwnedBy(viewerSellerID) {
			return nil, apperr.NotFound("product not found")
		}
		return p, nil
	}

	key := "products:item:" + idOrSlug
	var cached models.Product
	entry, found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	shared := context.WithoutCancel(ctx)
	val, err, _ := s.group.Do(flightKey(key, entry), func() (any, error) {
		return s.lookup(shared, idOrSlug)
	})
	if err != nil {
		return nil, storeError(err, "product not found", "failed to get product")
	}
	p := val.(*models.Product)
	if !p.IsPublished {
		return nil, apperr.NotFound("product not found")
	}

	if err := s.cache.Set(ctx, entry, p); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	// singleflight shares p between callers
	out := *p
	return &out, nil
}

// CreateProduct validates in and stores a new product owned by seller.
func (s *ProductService) CreateProduct(ctx context.Context, seller *models.Seller, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}

	now := s.now()
	base := slug.Make(in.Name)
	candidate := base
	exists, err := s.repo.SlugExists(ctx, base)
	if err != nil {
		return nil, storeError(err, "product not found", "failed to check slug")
	}
	if exists {
		candidate = slug.WithTimestamp(base, now)
	}

	product := &models.Product{SellerID: seller.ID}
	in.apply(product)

	for attempt := 0; ; attempt++ {
		product.ID = uuid.NewString()
		product.Slug = candidate
		err = s.repo.Create(ctx, product)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrDuplicate) || attempt >= slugRetries {
			return nil, storeError(err, "product not found", "failed to create product")
		}
		s.log.Info("slug collision, retrying", zap.String("slug", candidate), zap.Int("attempt", attempt+1))
		candidate = s.suffixer.Unique(base, s.now())
	}

	s.afterMutation(ctx, events.ProductCreated, "create", product)
	return product, nil
}

// owned loads a product and checks that seller may mutate it.
func (s *ProductService) owned(ctx context.Context, seller *models.Seller, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "product not found", "failed to get product")
	}
	if !p.OwnedBy(seller.ID) {
		return nil, apperr.Forbidden("you do not own this product")
	}
	return p, nil
}

// UpdateProduct replaces the writable fields of a product owned by seller.
// The slug never changes.
func (s *ProductService) UpdateProduct(ctx context.Context, seller *models.Seller, id string, in ProductInput) (*models.Product, error) {
	product, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}

	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	in.apply(product)
	product.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, storeError(err, "product not found", "failed to update product")
	}

	s.afterMutation(ctx, events.ProductUpdated, "update", product)
	return product, nil
}

// DeleteProduct removes a product owned by seller together with its
// inquiries.
func (s *ProductService) DeleteProduct(ctx context.Context, seller *models.Seller, id string) error {
	product, err := s.owned(ctx, seller, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return storeError(err, "product not found", "failed to delete product")
	}

	s.afterMutation(ctx, events.ProductDeleted, "delete", product)
	return nil
}

func (s *ProductService) afterMutation(ctx context.Context, routingKey, op string, p *models.Product) {
	s.metrics.ProductOp(op)

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("cache invalidation failed", zap.String("product_id", p.ID), zap.Error(err))
	}

	event := events.ProductEvent{
		ProductID:   p.ID,
		SellerID:    p.SellerID,
		Slug:        p.Slug,
		IsPublished: p.IsPublished,
		OccurredAt:  s.now(),
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.log.Error("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
	}
}
