package services

import (
	"context"
	"strings"
	"time"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/events"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InquiryInput is a buyer's message about a product.
type InquiryInput struct {
	ProductID     string  `json:"product_id" validate:"required"`
	SenderName    string  `json:"sender_name" validate:"required,max=255"`
	SenderEmail   string  `json:"sender_email" validate:"required,basic_email,max=255"`
	SenderCompany *string `json:"sender_company"`
	Message       string  `json:"message" validate:"required"`
}

func (in *InquiryInput) normalize() {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.SenderName = strings.TrimSpace(in.SenderName)
	in.SenderEmail = strings.TrimSpace(in.SenderEmail)
	in.SenderCompany = trimPtr(in.SenderCompany)
	in.Message = strings.TrimSpace(in.Message)
}

// InquiryService handles inquiry intake and the seller inbox.
type InquiryService struct {
	inquiries repositories.InquiryRepository
	products  repositories.ProductRepository
	publisher events.Publisher
	metrics   metrics.Recorder
	validate  *validator.Validate
	log       *zap.Logger
	now       func() time.Time
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(
	inquiries repositories.InquiryRepository,
	products repositories.ProductRepository,
	publisher events.Publisher,
	rec metrics.Recorder,
	log *zap.Logger,
) *InquiryService {
	return &InquiryService{
		inquiries: inquiries,
		products:  products,
		publisher: publisher,
		metrics:   rec,
		validate:  newValidator(),
		log:       log.Named("inquiries"),
		now:       time.Now,
	}
}

// SubmitInquiry validates in and records it against a published product.
// Unknown and unpublished products are indistinguishable to the caller.
func (s *InquiryService) SubmitInquiry(ctx context.Context, in InquiryInput) (*models.Inquiry, error) {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, storeError(err, "product not found", "failed to get product")
	}
	if !product.IsPublished {
		return nil, apperr.NotFound("product not found")
	}

	inquiry := &models.Inquiry{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		SenderName:    in.SenderName,
		SenderEmail:   in.SenderEmail,
		SenderCompany: in.SenderCompany,
		Message:       in.Message,
		IsRead:        false,
		CreatedAt:     s.now(),
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, storeError(err, "product not found", "failed to create inquiry")
	}
	s.metrics.InquiryOp("submit")

	event := events.InquiryCreatedEvent{
		InquiryID:   inquiry.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		SellerID:    product.SellerID,
		SenderName:  inquiry.SenderName,
		SenderEmail: inquiry.SenderEmail,
		CreatedAt:   inquiry.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.InquiryCreated, event); err != nil {
		s.log.Error("failed to publish event",
			zap.String("routing_key", events.InquiryCreated),
			zap.String("inquiry_id", inquiry.ID),
			zap.Error(err),
		)
	}
	return inquiry, nil
}

// owned loads an inquiry and checks that it concerns a product of seller.
func (s *InquiryService) owned(ctx context.Context, seller *models.Seller, id string) (*models.Inquiry, error) {
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "inquiry not found", "failed to get inquiry")
	}
	product, err := s.products.GetByID(ctx, inquiry.ProductID)
	if err != nil {
		return nil, storeError(err, "inquiry not found", "failed to get inquiry product")
	}
	if !product.OwnedBy(seller.ID) {
		return nil, apperr.Forbidden("you do not own this inquiry")
	}
	inquiry.ProductName = product.Name
	return inquiry, nil
}

// GetInquiry returns an inquiry of seller and marks it read.
func (s *InquiryService) GetInquiry(ctx context.Context, seller *models.Seller, id string) (*models.Inquiry, error) {
	inquiry, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if !inquiry.IsRead {
		if err := s.inquiries.SetRead(ctx, inquiry.ID, true); err != nil {
			return nil, storeError(err, "inquiry not found", "failed to mark inquiry read")
		}
		inquiry.IsRead = true
		s.metrics.InquiryOp("read")
	}
	return inquiry, nil
}

// SetInquiryRead flips the read flag of an inquiry of seller.
func (s *InquiryService) SetInquiryRead(ctx context.Context, seller *models.Seller, id string, read bool) (*models.Inquiry, error) {
	inquiry, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if err := s.inquiries.SetRead(ctx, inquiry.ID, read); err != nil {
		return nil, storeError(err, "inquiry not found", "failed to update inquiry")
	}
	inquiry.IsRead = read
	return inquiry, nil
}

// DeleteInquiry removes an inquiry of seller.
func (s *InquiryService) DeleteInquiry(ctx context.Context, seller *models.Seller, id string) error {
	inquiry, err := s.owned(ctx, seller, id)
	if err != nil {
		return err
	}
	if err := s.inquiries.Delete(ctx, inquiry.ID); err != nil {
		return storeError(err, "inquiry not found", "failed to delete inquiry")
	}
	s.metrics.InquiryOp("delete")
	return nil
}

// ListInquiries returns the seller's inquiries, newest first, and the number
// still unread.
func (s *InquiryService) ListInquiries(ctx context.Context, seller *models.Seller, unreadOnly bool) ([]models.Inquiry, int64, error) {
	inquiries, err := s.inquiries.ListBySeller(ctx, seller.ID, unreadOnly)
	if err != nil {
		return nil, 0, storeError(err, "inquiries not found", "failed to list inquiries")
	}
	unread, err := s.inquiries.CountUnread(ctx, seller.ID)
	if err != nil {
		return nil, 0, storeError(err, "inquiries not found", "failed to count unread inquiries")
	}
	if inquiries == nil {
		inquiries = []models.Inquiry{}
	}
	return inquiries, unread, nil
}
