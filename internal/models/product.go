package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Category is one of the fixed marketplace categories a product is listed under.
type Category string

const (
	CategoryAnalytics      Category = "analytics"
	CategoryCommunication  Category = "communication"
	CategoryCRM            Category = "crm"
	CategoryDeveloperTools Category = "developer-tools"
	CategoryFinance        Category = "finance"
	CategoryHR             Category = "hr"
	CategoryMarketing      Category = "marketing"
	CategoryProductivity   Category = "productivity"
	CategorySecurity       Category = "security"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryAnalytics,
	CategoryCommunication,
	CategoryCRM,
	CategoryDeveloperTools,
	CategoryFinance,
	CategoryHR,
	CategoryMarketing,
	CategoryProductivity,
	CategorySecurity,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PricingTier describes how a product is priced.
type PricingTier string

const (
	PricingFree     PricingTier = "free"
	PricingFreemium PricingTier = "freemium"
	PricingPaid     PricingTier = "paid"
	PricingContact  PricingTier = "contact"
)

// PricingTiers lists every valid pricing tier.
var PricingTiers = []PricingTier{PricingFree, PricingFreemium, PricingPaid, PricingContact}

// Valid reports whether p is a known pricing tier.
func (p PricingTier) Valid() bool {
	for _, known := range PricingTiers {
		if p == known {
			return true
		}
	}
	return false
}

// StringList is a list of strings persisted as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = out
	return nil
}

// Product represents a SaaS offering listed by a seller.
type Product struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SellerID    string      `json:"seller_id" gorm:"type:varchar(36);index;not null"`
	Slug        string      `json:"slug" gorm:"type:varchar(128);uniqueIndex;not null"`
	Name        string      `json:"name" gorm:"type:varchar(255);not null"`
	Tagline     string      `json:"tagline" gorm:"type:varchar(100);not null"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Category    Category    `json:"category" gorm:"type:varchar(32);index;not null"`
	Pricing     PricingTier `json:"pricing" gorm:"type:varchar(16);index;not null"`
	PriceText   *string     `json:"price_text"`
	LogoURL     *string     `json:"logo_url"`
	Screenshots StringList  `json:"screenshots" gorm:"type:text"`
	WebsiteURL  string      `json:"website_url" gorm:"type:varchar(512)"`
	IsPublished bool        `json:"is_published" gorm:"index;not null;default:false"`
	IsVerified  bool        `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt   time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OwnedBy reports whether the product belongs to the given seller.
func (p *Product) OwnedBy(sellerID string) bool {
	return sellerID != "" && p.SellerID == sellerID
}
