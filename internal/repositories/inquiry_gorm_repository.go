package repositories

import (
	"context"
	"fmt"

	"github.com/babushkai/saas-marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMInquiryRepository is a GORM implementation of InquiryRepository.
type GORMInquiryRepository struct {
	db *gorm.DB
}

// NewGORMInquiryRepository creates a new instance of GORMInquiryRepository.
func NewGORMInquiryRepository(db *gorm.DB) *GORMInquiryRepository {
	return &GORMInquiryRepository{
		db: db,
	}
}

// Create persists a new inquiry.
func (r *GORMInquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return translate("failed to create inquiry", err)
	}
	return nil
}

// GetByID retrieves an inquiry by ID.
func (r *GORMInquiryRepository) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	if err := r.db.WithContext(ctx).First(&inquiry, "id = ?", id).Error; err != nil {
		return nil, translate(fmt.Sprintf("failed to get inquiry by ID %s", id), err)
	}
	return &inquiry, nil
}

func (r *GORMInquiryRepository) sellerScope(ctx context.Context, sellerID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Inquiry{}).
		Joins("JOIN products ON products.id = inquiries.product_id").
		Where("products.seller_id = ?", sellerID)
}

// ListBySeller returns the seller's inquiries with the product name attached.
func (r *GORMInquiryRepository) ListBySeller(ctx context.Context, sellerID string, unreadOnly bool) ([]models.Inquiry, error) {
	query := r.sellerScope(ctx, sellerID).
		Select("inquiries.*, products.name AS product_name")
	if unreadOnly {
		query = query.Where("inquiries.is_read = ?", false)
	}

	inquiries := make([]models.Inquiry, 0)
	if err := query.Order("inquiries.created_at DESC").Find(&inquiries).Error; err != nil {
		return nil, translate("failed to list inquiries", err)
	}
	return inquiries, nil
}

// CountUnread counts unread inquiries across the seller's products.
func (r *GORMInquiryRepository) CountUnread(ctx context.Context, sellerID string) (int64, error) {
	var count int64
	if err := r.sellerScope(ctx, sellerID).Where("inquiries.is_read = ?", false).Count(&count).Error; err != nil {
		return 0, translate("failed to count unread inquiries", err)
	}
	return count, nil
}

// SetRead flips the read flag of an inquiry.
func (r *GORMInquiryRepository) SetRead(ctx context.Context, id string, read bool) error {
	res := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Update("is_read", read)
	if res.Error != nil {
		return translate("failed to update inquiry", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("inquiry with ID %s not found for update: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an inquiry.
func (r *GORMInquiryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Inquiry{}, "id = ?", id)
	if res.Error != nil {
		return translate("failed to delete inquiry", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("inquiry with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
