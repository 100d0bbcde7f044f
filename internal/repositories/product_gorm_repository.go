package repositories

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List returns products matching the filter, most recent first. Predicates
// are evaluated by the database, except that a non-ASCII search on SQLite is
// matched in Go because SQLite's LOWER only folds ASCII.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if r.db.Dialector.Name() == "sqlite" && !isASCII(filter.SearchTerm()) {
		return r.listFolded(ctx, filter)
	}

	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !filter.IncludeDrafts {
		query = query.Where("is_published = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if len(filter.Pricing) > 0 {
		query = query.Where("pricing IN ?", filter.Pricing)
	}
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if term := filter.SearchTerm(); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(tagline) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	products := make([]models.Product, 0)
	if err := query.Find(&products).Error; err != nil {
		return nil, translate("failed to list products", err)
	}
	return products, nil
}

// listFolded narrows by every predicate except search in SQL, then applies
// the full filter with Unicode case folding and pages the result.
func (r *GORMProductRepository) listFolded(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	narrowed := filter
	narrowed.Search = ""
	narrowed.Limit = 0
	narrowed.Offset = 0

	candidates, err := r.List(ctx, narrowed)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0)
	for i := range candidates {
		if filter.Matches(&candidates[i]) {
			products = append(products, candidates[i])
		}
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(products) {
			return []models.Product{}, nil
		}
		products = products[filter.Offset:]
	}
	if filter.Limit > 0 && len(products) > filter.Limit {
		products = products[:filter.Limit]
	}
	return products, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(fmt.Sprintf("failed to get product by ID %s", id), err)
	}
	return &product, nil
}

// GetBySlug retrieves a single product by its slug from the database.
func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, translate(fmt.Sprintf("failed to get product by slug %s", slug), err)
	}
	return &product, nil
}

// SlugExists reports whether any product, published or not, uses slug.
func (r *GORMProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, translate("failed to check slug", err)
	}
	return count > 0, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return translate("failed to create product", err)
	}
	return nil
}

// Update overwrites every column of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("*").Omit("id", "seller_id", "slug", "created_at").Updates(product)
	if res.Error != nil {
		return translate("failed to update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product and its inquiries in a single transaction.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Inquiry{}).Error; err != nil {
			return translate("failed to delete product inquiries", err)
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return translate("failed to delete product", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}
