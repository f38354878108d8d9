package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"

	"github.com/utafrali/storefront/internal/domain"
)

// Kafka topic constants for storefront domain events.
const (
	TopicReviewSubmitted = "storefront.review.submitted"
	TopicReviewModerated = "storefront.review.moderated"
	TopicCartUpdated     = "storefront.cart.updated"
	TopicCartCleared     = "storefront.cart.cleared"
)

// Aggregate type constants.
const (
	AggregateTypeReview = "review"
	AggregateTypeCart   = "cart"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// ReviewData is the payload of review events.
type ReviewData struct {
	ReviewID       string `json:"review_id"`
	ProductID      string `json:"product_id"`
	UserID         string `json:"user_id"`
	Rating         int    `json:"rating"`
	Verified       bool   `json:"verified"`
	Status         string `json:"status"`
	ModeratorNotes string `json:"moderator_notes,omitempty"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  string         `json:"subtotal"`
	Total     string         `json:"total"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events to Kafka. A producer built
// without a Kafka client drops every event.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates an event producer. kafka may be nil.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	p := &Producer{logger: logger}
	if kafka != nil {
		p.kafka = kafka
	}
	return p
}

// Enabled reports whether events reach a broker.
func (p *Producer) Enabled() bool {
	return p.kafka != nil
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, r domain.Review) error {
	return p.publish(ctx, TopicReviewSubmitted, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishReviewModerated publishes a review.moderated event.
func (p *Producer) PublishReviewModerated(ctx context.Context, r domain.Review) error {
	return p.publish(ctx, TopicReviewModerated, r.ID, AggregateTypeReview, reviewData(r))
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID string, items []domain.CartItem, totals domain.CartTotals) error {
	data := CartUpdatedData{
		SessionID: sessionID,
		Items:     make([]CartItemData, len(items)),
		ItemCount: totals.ItemCount,
		Subtotal:  totals.Subtotal,
		Total:     totals.Total,
	}
	for i, item := range items {
		data.Items[i] = CartItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return p.publish(ctx, TopicCartUpdated, sessionID, AggregateTypeCart, data)
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, sessionID, AggregateTypeCart, CartClearedData{SessionID: sessionID})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p.kafka == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

func reviewData(r domain.Review) ReviewData {
	return ReviewData{
		ReviewID:       r.ID,
		ProductID:      r.ProductID,
		UserID:         r.UserID,
		Rating:         r.Rating,
		Verified:       r.Verified,
		Status:         string(r.Status),
		ModeratorNotes: r.ModeratorNotes,
	}
}
