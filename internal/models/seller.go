package models

import "time"

// Seller is an account permitted to list products. It is bound 1:1 to an
// identity issued by the external auth provider.
type Seller struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AuthUserID  string    `json:"-" gorm:"type:varchar(255);uniqueIndex;not null"`
	Username    string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255);not null"`
	CompanyName *string   `json:"company_name"`
	Bio         *string   `json:"bio" gorm:"type:text"`
	AvatarURL   *string   `json:"avatar_url"`
	WebsiteURL  *string   `json:"website_url"`
	SocialURL   *string   `json:"social_url"`
	IsVerified  bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is the caller as asserted by a verified bearer token.
type Identity struct {
	Subject string
	Email   string
}
