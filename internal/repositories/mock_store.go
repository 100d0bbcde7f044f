package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/google/uuid"
)

// MockStore is an in-memory catalog shared by the mock repositories, so that
// cross-table operations such as product deletion behave like the database.
type MockStore struct {
	mu        sync.RWMutex
	products  map[string]models.Product
	sellers   map[string]models.Seller
	inquiries map[string]models.Inquiry
}

// NewMockStore creates an empty in-memory catalog.
func NewMockStore() *MockStore {
	return &MockStore{
		products:  make(map[string]models.Product),
		sellers:   make(map[string]models.Seller),
		inquiries: make(map[string]models.Inquiry),
	}
}

// Products returns a ProductRepository backed by the store.
func (s *MockStore) Products() *MockProductRepository { return &MockProductRepository{s: s} }

// Sellers returns a SellerRepository backed by the store.
func (s *MockStore) Sellers() *MockSellerRepository { return &MockSellerRepository{s: s} }

// Inquiries returns an InquiryRepository backed by the store.
func (s *MockStore) Inquiries() *MockInquiryRepository { return &MockInquiryRepository{s: s} }

func stamp(created *time.Time) time.Time {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	return now
}

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	s *MockStore
}

// List returns matching products, most recent first.
func (r *MockProductRepository) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if filter.Matches(&p) {
			productList = append(productList, p)
		}
	}
	sort.Slice(productList, func(i, j int) bool {
		if productList[i].CreatedAt.Equal(productList[j].CreatedAt) {
			return productList[i].ID > productList[j].ID
		}
		return productList[i].CreatedAt.After(productList[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(productList) {
			return []models.Product{}, nil
		}
		productList = productList[filter.Offset:]
	}
	if filter.Limit > 0 && len(productList) > filter.Limit {
		productList = productList[:filter.Limit]
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	product, ok := r.s.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetBySlug returns a product by its slug.
func (r *MockProductRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product with slug %s: %w", slug, ErrNotFound)
}

// SlugExists reports whether any product uses slug.
func (r *MockProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.GetBySlug(ctx, slug)
	return err == nil, nil
}

// Create adds a new product, rejecting duplicate IDs and slugs.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, ok := r.s.products[product.ID]; ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrDuplicate)
	}
	for _, p := range r.s.products {
		if p.Slug == product.Slug {
			return fmt.Errorf("product with slug %s: %w", product.Slug, ErrDuplicate)
		}
	}
	product.UpdatedAt = stamp(&product.CreatedAt)
	r.s.products[product.ID] = *product
	return nil
}

// Update modifies an existing product, keeping its immutable columns.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	product.SellerID = existing.SellerID
	product.Slug = existing.Slug
	product.CreatedAt = existing.CreatedAt
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now().UTC()
	}
	r.s.products[product.ID] = *product
	return nil
}

// Delete removes a product and every inquiry that references it.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.s.products, id)
	for inquiryID, inq := range r.s.inquiries {
		if inq.ProductID == id {
			delete(r.s.inquiries, inquiryID)
		}
	}
	return nil
}

// MockSellerRepository is an in-memory implementation of SellerRepository.
type MockSellerRepository struct {
	s *MockStore
}

func (r *MockSellerRepository) find(match func(models.Seller) bool, what string) (*models.Seller, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, seller := range r.s.sellers {
		if match(seller) {
			return &seller, nil
		}
	}
	return nil, fmt.Errorf("seller with %s: %w", what, ErrNotFound)
}

// GetByID returns a seller by ID.
func (r *MockSellerRepository) GetByID(_ context.Context, id string) (*models.Seller, error) {
	return r.find(func(s models.Seller) bool { return s.ID == id }, "ID "+id)
}

// GetByAuthUserID returns the seller bound to an auth identity.
func (r *MockSellerRepository) GetByAuthUserID(_ context.Context, authUserID string) (*models.Seller, error) {
	return r.find(func(s models.Seller) bool { return s.AuthUserID == authUserID }, "auth user "+authUserID)
}

// GetByUsername returns a seller by username.
func (r *MockSellerRepository) GetByUsername(_ context.Context, username string) (*models.Seller, error) {
	return r.find(func(s models.Seller) bool { return s.Username == username }, "username "+username)
}

// Create adds a seller, enforcing unique auth identity and username.
func (r *MockSellerRepository) Create(_ context.Context, seller *models.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if seller.ID == "" {
		seller.ID = uuid.New().String()
	}
	for _, existing := range r.s.sellers {
		if existing.AuthUserID == seller.AuthUserID || existing.Username == seller.Username {
			return fmt.Errorf("seller %s: %w", seller.Username, ErrDuplicate)
		}
	}
	seller.UpdatedAt = stamp(&seller.CreatedAt)
	r.s.sellers[seller.ID] = *seller
	return nil
}

// Update saves a seller profile, enforcing username uniqueness.
func (r *MockSellerRepository) Update(_ context.Context, seller *models.Seller) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.sellers[seller.ID]
	if !ok {
		return fmt.Errorf("seller with ID %s not found for update: %w", seller.ID, ErrNotFound)
	}
	for id, other := range r.s.sellers {
		if id != seller.ID && other.Username == seller.Username {
			return fmt.Errorf("seller %s: %w", seller.Username, ErrDuplicate)
		}
	}
	seller.AuthUserID = existing.AuthUserID
	seller.IsVerified = existing.IsVerified
	seller.CreatedAt = existing.CreatedAt
	seller.UpdatedAt = time.Now().UTC()
	r.s.sellers[seller.ID] = *seller
	return nil
}

// MockInquiryRepository is an in-memory implementation of InquiryRepository.
type MockInquiryRepository struct {
	s *MockStore
}

// Create adds a new inquiry.
func (r *MockInquiryRepository) Create(_ context.Context, inquiry *models.Inquiry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if inquiry.ID == "" {
		inquiry.ID = uuid.New().String()
	}
	stamp(&inquiry.CreatedAt)
	r.s.inquiries[inquiry.ID] = *inquiry
	return nil
}

// GetByID returns an inquiry by ID.
func (r *MockInquiryRepository) GetByID(_ context.Context, id string) (*models.Inquiry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inquiry, ok := r.s.inquiries[id]
	if !ok {
		return nil, fmt.Errorf("inquiry with ID %s: %w", id, ErrNotFound)
	}
	return &inquiry, nil
}

func (r *MockInquiryRepository) ownedBy(sellerID string, unreadOnly bool) []models.Inquiry {
	out := make([]models.Inquiry, 0)
	for _, inq := range r.s.inquiries {
		product, ok := r.s.products[inq.ProductID]
		if !ok || product.SellerID != sellerID {
			continue
		}
		if unreadOnly && inq.IsRead {
			continue
		}
		inq.ProductName = product.Name
		out = append(out, inq)
	}
	return out
}

// ListBySeller returns the seller's inquiries, newest first.
func (r *MockInquiryRepository) ListBySeller(_ context.Context, sellerID string, unreadOnly bool) ([]models.Inquiry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	inquiries := r.ownedBy(sellerID, unreadOnly)
	sort.Slice(inquiries, func(i, j int) bool {
		return inquiries[i].CreatedAt.After(inquiries[j].CreatedAt)
	})
	return inquiries, nil
}

// CountUnread counts unread inquiries across the seller's products.
func (r *MockInquiryRepository) CountUnread(_ context.Context, sellerID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return int64(len(r.ownedBy(sellerID, true))), nil
}

// SetRead updates the read flag of an inquiry.
func (r *MockInquiryRepository) SetRead(_ context.Context, id string, read bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inquiry, ok := r.s.inquiries[id]
	if !ok {
		return fmt.Errorf("inquiry with ID %s not found for update: %w", id, ErrNotFound)
	}
	inquiry.IsRead = read
	r.s.inquiries[id] = inquiry
	return nil
}

// Delete removes an inquiry.
func (r *MockInquiryRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.inquiries[id]; !ok {
		return fmt.Errorf("inquiry with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.s.inquiries, id)
	return nil
}
