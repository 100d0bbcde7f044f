package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/cache"
	"github.com/babushkai/saas-marketplace/internal/events"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/repositories"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const productUUID = "5b0f3c8e-8a3c-4f55-9d43-2f7d0c1e9a10"

var (
	sellerA = &models.Seller{ID: "seller-a", Username: "acme"}
	sellerB = &models.Seller{ID: "seller-b", Username: "globex"}
)

func newProductService(t *testing.T, repo *MockProductRepository, c cache.Cache, pub events.Publisher) *services.ProductService {
	t.Helper()
	if c == nil {
		c = cache.Nop{}
	}
	if pub == nil {
		pub = events.NewLogPublisher(zap.NewNop())
	}
	svc, err := services.NewProductService(repo, c, pub, metrics.Nop{}, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func validProductInput() services.ProductInput {
	return services.ProductInput{
		Name:        "Invoice Hub",
		Tagline:     "Billing without the spreadsheets",
		Description: "## Features\n- Recurring invoices",
		Category:    models.CategoryFinance,
		Pricing:     models.PricingFreemium,
		IsPublished: true,
	}
}

func publishedProduct() *models.Product {
	return &models.Product{
		ID:          productUUID,
		SellerID:    sellerA.ID,
		Slug:        "invoice-hub",
		Name:        "Invoice Hub",
		Tagline:     "Billing without the spreadsheets",
		Description: "Invoices",
		Category:    models.CategoryFinance,
		Pricing:     models.PricingFreemium,
		Screenshots: models.StringList{},
		IsPublished: true,
	}
}

func TestProductService_ListProducts_NormalizesFilter(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	expected := []models.Product{*publishedProduct()}
	mockRepo.On("List", mock.Anything, models.ProductFilter{Search: "invoice", Limit: 50}).Return(expected, nil).Once()

	products, err := service.ListProducts(context.Background(), models.ProductFilter{Search: "  invoice ", IncludeDrafts: true})

	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_ClampsPaging(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f models.ProductFilter) bool {
		return f.Limit == 100 && f.Offset == 0
	})).Return([]models.Product(nil), nil).Once()

	products, err := service.ListProducts(context.Background(), models.ProductFilter{Limit: 500, Offset: -3})

	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProducts_CacheHit(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	service := newProductService(t, mockRepo, mockCache, nil)

	cached := []models.Product{*publishedProduct()}
	mockCache.On("Get", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*[]models.Product) = cached
		}).
		Return(cache.Entry{}, true, nil).Once()

	products, err := service.ListProducts(context.Background(), models.ProductFilter{})

	assert.NoError(t, err)
	assert.Equal(t, cached, products)
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestProductService_ListProducts_CacheErrorsDoNotFail(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCache)
	service := newProductService(t, mockRepo, mockCache, nil)

	mockCache.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(cache.Entry{}, false, errors.New("redis down")).Once()
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()
	mockRepo.On("List", mock.Anything, mock.Anything).Return([]models.Product{*publishedProduct()}, nil).Once()

	products, err := service.ListProducts(context.Background(), models.ProductFilter{})

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_ListProducts_StoreUnavailable(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	mockRepo.On("List", mock.Anything, mock.Anything).Return(nil, repositories.ErrUnavailable).Once()

	_, err := service.ListProducts(context.Background(), models.ProductFilter{})

	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestProductService_GetProduct(t *testing.T) {
	draft := publishedProduct()
	draft.IsPublished = false

	t.Run("public by slug", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetBySlug", mock.Anything, "invoice-hub").Return(publishedProduct(), nil).Once()

		p, err := service.GetProduct(context.Background(), "invoice-hub", "")
		assert.NoError(t, err)
		assert.Equal(t, productUUID, p.ID)
		mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("uuid falls back to slug", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("GetBySlug", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()

		_, err := service.GetProduct(context.Background(), productUUID, "")
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("public draft hidden", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(draft, nil).Once()

		_, err := service.GetProduct(context.Background(), productUUID, "")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("owner sees draft", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(draft, nil).Once()

		p, err := service.GetProduct(context.Background(), productUUID, sellerA.ID)
		assert.NoError(t, err)
		assert.False(t, p.IsPublished)
	})

	t.Run("other seller cannot see draft", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(draft, nil).Once()

		_, err := service.GetProduct(context.Background(), productUUID, sellerB.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("nonexistent", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetBySlug", mock.Anything, "nope").Return(nil, repositories.ErrNotFound).Once()

		_, err := service.GetProduct(context.Background(), "nope", "")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *services.ProductInput)
		wantMsg string
	}{
		{name: "missing name", mutate: func(in *services.ProductInput) { in.Name = "" }, wantMsg: "missing required field: name"},
		{name: "blank name", mutate: func(in *services.ProductInput) { in.Name = "   " }, wantMsg: "missing required field: name"},
		{name: "missing tagline", mutate: func(in *services.ProductInput) { in.Tagline = "" }, wantMsg: "missing required field: tagline"},
		{name: "missing category", mutate: func(in *services.ProductInput) { in.Category = "" }, wantMsg: "missing required field: category"},
		{name: "invalid category", mutate: func(in *services.ProductInput) { in.Category = "games" }, wantMsg: "invalid category"},
		{name: "invalid pricing", mutate: func(in *services.ProductInput) { in.Pricing = "lifetime" }, wantMsg: "invalid pricing"},
		{name: "long tagline", mutate: func(in *services.ProductInput) { in.Tagline = strings.Repeat("x", 101) }, wantMsg: "tagline must be at most 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := newProductService(t, mockRepo, nil, nil)

			in := validProductInput()
			tt.mutate(&in)
			p, err := service.CreateProduct(context.Background(), sellerA, in)

			assert.Nil(t, p)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newProductService(t, mockRepo, nil, mockPub)

	mockRepo.On("SlugExists", mock.Anything, "invoice-hub").Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.Slug == "invoice-hub" && p.SellerID == sellerA.ID && p.ID != "" &&
			p.Screenshots != nil && len(p.Screenshots) == 0 && p.LogoURL == nil
	})).Return(nil).Once()
	mockPub.On("Publish", mock.Anything, events.ProductCreated, mock.AnythingOfType("events.ProductEvent")).Return(nil).Once()

	p, err := service.CreateProduct(context.Background(), sellerA, validProductInput())

	require.NoError(t, err)
	assert.Equal(t, "invoice-hub", p.Slug)
	assert.True(t, p.IsPublished)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestProductService_CreateProduct_ExistingSlugGetsTimestamp(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	mockRepo.On("SlugExists", mock.Anything, "invoice-hub").Return(true, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	p, err := service.CreateProduct(context.Background(), sellerA, validProductInput())

	require.NoError(t, err)
	assert.Regexp(t, `^invoice-hub-\d+$`, p.Slug)
}

func TestProductService_CreateProduct_RetriesUniqueViolation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	var slugs []string
	record := func(args mock.Arguments) { slugs = append(slugs, args.Get(1).(*models.Product).Slug) }
	mockRepo.On("SlugExists", mock.Anything, "invoice-hub").Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(record).Return(repositories.ErrDuplicate).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Run(record).Return(nil).Once()

	p, err := service.CreateProduct(context.Background(), sellerA, validProductInput())

	require.NoError(t, err)
	require.Len(t, slugs, 2)
	assert.Equal(t, "invoice-hub", slugs[0])
	assert.Regexp(t, `^invoice-hub-\d+-[a-z0-9]{6}$`, slugs[1])
	assert.Equal(t, slugs[1], p.Slug)
}

func TestProductService_CreateProduct_GivesUpAfterRetries(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	mockRepo.On("SlugExists", mock.Anything, "invoice-hub").Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicate)

	_, err := service.CreateProduct(context.Background(), sellerA, validProductInput())

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	mockRepo.AssertNumberOfCalls(t, "Create", 4)
}

func TestProductService_CreateProduct_PublishFailureIgnored(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newProductService(t, mockRepo, nil, mockPub)

	mockRepo.On("SlugExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	mockPub.On("Publish", mock.Anything, events.ProductCreated, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := service.CreateProduct(context.Background(), sellerA, validProductInput())

	assert.NoError(t, err)
	mockPub.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, repositories.ErrNotFound).Once()

		_, err := service.UpdateProduct(context.Background(), sellerA, "missing", validProductInput())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("other owner forbidden", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()

		_, err := service.UpdateProduct(context.Background(), sellerB, productUUID, validProductInput())
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid input", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()

		in := validProductInput()
		in.Description = ""
		_, err := service.UpdateProduct(context.Background(), sellerA, productUUID, in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("full replace keeps slug", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockCache := new(MockCache)
		service := newProductService(t, mockRepo, mockCache, nil)

		existing := publishedProduct()
		price := "$10/mo"
		existing.PriceText = &price
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(existing, nil).Once()
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
		mockCache.On("Invalidate", mock.Anything).Return(nil).Once()

		in := validProductInput()
		in.Name = "Invoice Hub Pro"
		in.IsPublished = false
		p, err := service.UpdateProduct(context.Background(), sellerA, productUUID, in)

		require.NoError(t, err)
		assert.Equal(t, "invoice-hub", p.Slug)
		assert.Equal(t, "Invoice Hub Pro", p.Name)
		assert.False(t, p.IsPublished)
		assert.Nil(t, p.PriceText)
		assert.False(t, p.UpdatedAt.IsZero())
		mockCache.AssertExpectations(t)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	t.Run("other owner forbidden", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := newProductService(t, mockRepo, nil, nil)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()

		err := service.DeleteProduct(context.Background(), sellerB, productUUID)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("owner deletes", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockPub := new(MockPublisher)
		service := newProductService(t, mockRepo, nil, mockPub)
		mockRepo.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()
		mockRepo.On("Delete", mock.Anything, productUUID).Return(nil).Once()
		mockPub.On("Publish", mock.Anything, events.ProductDeleted, mock.Anything).Return(nil).Once()

		assert.NoError(t, service.DeleteProduct(context.Background(), sellerA, productUUID))
		mockRepo.AssertExpectations(t)
		mockPub.AssertExpectations(t)
	})
}

func TestProductService_ListSellerProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newProductService(t, mockRepo, nil, nil)

	mockRepo.On("List", mock.Anything, models.ProductFilter{SellerID: sellerA.ID, IncludeDrafts: true}).
		Return([]models.Product{*publishedProduct()}, nil).Once()

	products, err := service.ListSellerProducts(context.Background(), sellerA.ID)

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	mockRepo.AssertExpectations(t)
}
