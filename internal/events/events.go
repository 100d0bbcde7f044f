// Package events defines the domain events emitted for external
// collaborators such as the notification mailer.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Routing keys.
const (
	InquiryCreated = "inquiry.created"
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

// Publisher delivers an event payload under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// InquiryCreatedEvent notifies the owning seller of a new inquiry.
type InquiryCreatedEvent struct {
	InquiryID   string    `json:"inquiry_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	SellerID    string    `json:"seller_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductEvent describes a change to a product listing.
type ProductEvent struct {
	ProductID   string    `json:"product_id"`
	SellerID    string    `json:"seller_id"`
	Slug        string    `json:"slug"`
	IsPublished bool      `json:"is_published"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// LogPublisher writes events to the log. It is used when no broker is
// configured.
type LogPublisher struct {
	log *zap.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs the event and never fails.
func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.log.Info("event published", zap.String("routing_key", routingKey), zap.Any("payload", payload))
	return nil
}
