package repositories

import (
	"context"
	"errors"

	"github.com/babushkai/saas-marketplace/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable is returned when the data store cannot be reached.
	ErrUnavailable = errors.New("data store unavailable")
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	// Delete removes the product together with its inquiries.
	Delete(ctx context.Context, id string) error
}

// SellerRepository defines the interface for seller data access.
type SellerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Seller, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*models.Seller, error)
	GetByUsername(ctx context.Context, username string) (*models.Seller, error)
	Create(ctx context.Context, seller *models.Seller) error
	Update(ctx context.Context, seller *models.Seller) error
}

// InquiryRepository defines the interface for inquiry data access.
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id string) (*models.Inquiry, error)
	// ListBySeller returns inquiries for every product owned by the seller,
	// newest first.
	ListBySeller(ctx context.Context, sellerID string, unreadOnly bool) ([]models.Inquiry, error)
	CountUnread(ctx context.Context, sellerID string) (int64, error)
	SetRead(ctx context.Context, id string, read bool) error
	Delete(ctx context.Context, id string) error
}
