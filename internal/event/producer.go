package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	pkgkafka "github.com/utafrali/catalog-fixtures/pkg/kafka"
	"github.com/utafrali/catalog-fixtures/pkg/logger"
)

// Kafka topic constants for catalog events.
const (
	TopicProductCreated = "catalog.product.created"
)

// Aggregate type constant.
const AggregateTypeProduct = "product"

// Source identifier for events originating from fixture runs.
const SourceCatalogFixtures = "catalog-fixtures"

// ProductCreatedData is the payload for a catalog.product.created event.
type ProductCreatedData struct {
	ProductID  string            `json:"product_id"`
	Code       string            `json:"code"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	MainTaxon  string            `json:"main_taxon,omitempty"`
	Archetype  string            `json:"archetype,omitempty"`
	Taxons     []string          `json:"taxons,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// BatchPublisher is implemented by *pkgkafka.Producer.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, events []*pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  BatchPublisher
	logger *slog.Logger
}

// NewProducer creates a new catalog event producer.
func NewProducer(kafka BatchPublisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishProductsCreated publishes one product.created event per product in
// a single batch. The run ID in ctx, if any, becomes the correlation ID.
func (p *Producer) PublishProductsCreated(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	runID := logger.RunIDFromContext(ctx)
	events := make([]*pkgkafka.Event, 0, len(products))
	for _, product := range products {
		data := ProductCreatedData{
			ProductID: product.ID,
			Code:      product.Code,
			Name:      product.Name,
			Slug:      product.Slug,
			MainTaxon: product.MainTaxon,
			Archetype: product.Archetype,
			Taxons:    product.Taxons,
		}
		if len(product.Attributes) > 0 {
			data.Attributes = make(map[string]string, len(product.Attributes))
			for _, av := range product.Attributes {
				data.Attributes[av.Attribute] = av.Value
			}
		}

		evt, err := pkgkafka.NewEvent(TopicProductCreated, product.Code, AggregateTypeProduct, SourceCatalogFixtures, data)
		if err != nil {
			return fmt.Errorf("create product.created event: %w", err)
		}
		if runID != "" {
			evt.WithCorrelationID(runID)
		}
		if fixture := logger.FixtureFromContext(ctx); fixture != "" {
			evt.WithMetadata("fixture", fixture)
		}
		events = append(events, evt)
	}

	if err := p.kafka.PublishBatch(ctx, TopicProductCreated, events); err != nil {
		return fmt.Errorf("publish product.created events: %w", err)
	}

	p.logger.InfoContext(ctx, "product.created events published",
		slog.Int("count", len(events)),
	)
	return nil
}
