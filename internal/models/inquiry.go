package models

import "time"

// Inquiry is a buyer message about a product, routed to the product's seller.
type Inquiry struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID     string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	SenderName    string    `json:"sender_name" gorm:"type:varchar(255);not null"`
	SenderEmail   string    `json:"sender_email" gorm:"type:varchar(255);not null"`
	SenderCompany *string   `json:"sender_company"`
	Message       string    `json:"message" gorm:"type:text;not null"`
	IsRead        bool      `json:"is_read" gorm:"index;not null;default:false"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`

	// ProductName is filled on seller dashboard listings only.
	ProductName string `json:"product_name,omitempty" gorm:"->;-:migration"`
}
