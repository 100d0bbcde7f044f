package services_test

import (
	"context"

	"github.com/babushkai/saas-marketplace/internal/cache"
	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockInquiryRepository is a mock implementation of repositories.InquiryRepository
type MockInquiryRepository struct {
	mock.Mock
}

func (m *MockInquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	args := m.Called(ctx, inquiry)
	return args.Error(0)
}

func (m *MockInquiryRepository) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryRepository) ListBySeller(ctx context.Context, sellerID string, unreadOnly bool) ([]models.Inquiry, error) {
	args := m.Called(ctx, sellerID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *MockInquiryRepository) CountUnread(ctx context.Context, sellerID string) (int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInquiryRepository) SetRead(ctx context.Context, id string, read bool) error {
	args := m.Called(ctx, id, read)
	return args.Error(0)
}

func (m *MockInquiryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSellerRepository is a mock implementation of repositories.SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) seller(args mock.Arguments) (*models.Seller, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellerRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	return m.seller(m.Called(ctx, id))
}

func (m *MockSellerRepository) GetByAuthUserID(ctx context.Context, authUserID string) (*models.Seller, error) {
	return m.seller(m.Called(ctx, authUserID))
}

func (m *MockSellerRepository) GetByUsername(ctx context.Context, username string) (*models.Seller, error) {
	return m.seller(m.Called(ctx, username))
}

func (m *MockSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

func (m *MockSellerRepository) Update(ctx context.Context, seller *models.Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockCache is a mock implementation of cache.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest any) (cache.Entry, bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Get(0).(cache.Entry), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, entry cache.Entry, value any) error {
	args := m.Called(ctx, entry, value)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
