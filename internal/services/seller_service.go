package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultDisplayName = "New Seller"

// ProfileInput is the writable part of a seller profile.
type ProfileInput struct {
	Username    string  `json:"username" validate:"required,max=64,username"`
	DisplayName string  `json:"display_name" validate:"required,max=255"`
	CompanyName *string `json:"company_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	WebsiteURL  *string `json:"website_url"`
	SocialURL   *string `json:"social_url"`
}

func (in *ProfileInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.CompanyName = trimPtr(in.CompanyName)
	in.Bio = trimPtr(in.Bio)
	in.AvatarURL = trimPtr(in.AvatarURL)
	in.WebsiteURL = trimPtr(in.WebsiteURL)
	in.SocialURL = trimPtr(in.SocialURL)
}

// SellerService resolves identities to sellers and manages profiles.
type SellerService struct {
	sellers  repositories.SellerRepository
	products repositories.ProductRepository
	validate *validator.Validate
	log      *zap.Logger
}

// NewSellerService creates a new SellerService.
func NewSellerService(sellers repositories.SellerRepository, products repositories.ProductRepository, log *zap.Logger) *SellerService {
	return &SellerService{
		sellers:  sellers,
		products: products,
		validate: newValidator(),
		log:      log.Named("sellers"),
	}
}

// placeholderUsername derives a stable username from the identity subject.
func placeholderUsername(subject string, hexLen int) string {
	sum := sha256.Sum256([]byte(subject))
	return "seller-" + hex.EncodeToString(sum[:])[:hexLen]
}

// placeholderDisplayName uses the local part of the email, if any.
func placeholderDisplayName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return defaultDisplayName
	}
	return local
}

// ResolveSeller returns the seller bound to identity, creating one with a
// placeholder profile on first access.
func (s *SellerService) ResolveSeller(ctx context.Context, identity models.Identity) (*models.Seller, error) {
	if identity.Subject == "" {
		return nil, apperr.Unauthenticated("authentication required")
	}

	seller, err := s.sellers.GetByAuthUserID(ctx, identity.Subject)
	if err == nil {
		return seller, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeError(err, "seller not found", "failed to resolve seller")
	}

	// The longer hash is only needed when the short one is already taken.
	for _, hexLen := range []int{8, 16} {
		seller = &models.Seller{
			ID:          uuid.NewString(),
			AuthUserID:  identity.Subject,
			Username:    placeholderUsername(identity.Subject, hexLen),
			DisplayName: placeholderDisplayName(identity.Email),
		}
		err = s.sellers.Create(ctx, seller)
		if err == nil {
			s.log.Info("seller provisioned", zap.String("seller_id", seller.ID), zap.String("username", seller.Username))
			return seller, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, storeError(err, "seller not found", "failed to create seller")
		}
		// A concurrent request may have provisioned the same identity.
		if existing, getErr := s.sellers.GetByAuthUserID(ctx, identity.Subject); getErr == nil {
			return existing, nil
		}
	}
	return nil, apperr.Internal("failed to create seller", err)
}

// GetPublicProfile returns a seller by username with their published
// products.
func (s *SellerService) GetPublicProfile(ctx context.Context, username string) (*models.Seller, []models.Product, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, apperr.Validation("missing required field: username")
	}
	seller, err := s.sellers.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, storeError(err, "seller not found", "failed to get seller")
	}
	products, err := s.products.List(ctx, models.ProductFilter{SellerID: seller.ID})
	if err != nil {
		return nil, nil, storeError(err, "seller not found", "failed to list seller products")
	}
	return seller, products, nil
}

// UpsertProfile writes the profile of the seller bound to identity.
func (s *SellerService) UpsertProfile(ctx context.Context, identity models.Identity, in ProfileInput) (*models.Seller, error) {
	in.normalize()
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}

	seller, err := s.ResolveSeller(ctx, identity)
	if err != nil {
		return nil, err
	}

	claimed, err := s.sellers.GetByUsername(ctx, in.Username)
	switch {
	case err == nil && claimed.ID != seller.ID:
		return nil, apperr.Conflict("username is already taken")
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, storeError(err, "seller not found", "failed to check username")
	}

	seller.Username = in.Username
	seller.DisplayName = in.DisplayName
	seller.CompanyName = in.CompanyName
	seller.Bio = in.Bio
	seller.AvatarURL = in.AvatarURL
	seller.WebsiteURL = in.WebsiteURL
	seller.SocialURL = in.SocialURL

	if err := s.sellers.Update(ctx, seller); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("username is already taken")
		}
		return nil, storeError(err, "seller not found", "failed to update seller")
	}
	return seller, nil
}
