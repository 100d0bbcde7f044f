package repositories

import (
	"context"
	"fmt"

	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSellerRepository is a GORM implementation of SellerRepository.
type GORMSellerRepository struct {
	db *gorm.DB
}

// NewGORMSellerRepository creates a new instance of GORMSellerRepository.
func NewGORMSellerRepository(db *gorm.DB) *GORMSellerRepository {
	return &GORMSellerRepository{
		db: db,
	}
}

func (r *GORMSellerRepository) first(ctx context.Context, column, value string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, column+" = ?", value).Error; err != nil {
		return nil, translate(fmt.Sprintf("failed to get seller by %s %s", column, value), err)
	}
	return &seller, nil
}

// GetByID retrieves a seller by ID.
func (r *GORMSellerRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	return r.first(ctx, "id", id)
}

// GetByAuthUserID retrieves the seller bound to an auth provider identity.
func (r *GORMSellerRepository) GetByAuthUserID(ctx context.Context, authUserID string) (*models.Seller, error) {
	return r.first(ctx, "auth_user_id", authUserID)
}

// GetByUsername retrieves a seller by username.
func (r *GORMSellerRepository) GetByUsername(ctx context.Context, username string) (*models.Seller, error) {
	return r.first(ctx, "username", username)
}

// Create creates a new seller in the database.
func (r *GORMSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	if seller.ID == "" {
		seller.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		return translate("failed to create seller", err)
	}
	return nil
}

// Update saves every profile column of an existing seller.
func (r *GORMSellerRepository) Update(ctx context.Context, seller *models.Seller) error {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", seller.ID).
		Select("*").Omit("id", "auth_user_id", "is_verified", "created_at").Updates(seller)
	if res.Error != nil {
		return translate("failed to update seller", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller with ID %s not found for update: %w", seller.ID, ErrNotFound)
	}
	return nil
}
