package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	"github.com/utafrali/catalog-fixtures/internal/repository"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/slug"
	"github.com/utafrali/catalog-fixtures/pkg/validator"
)

// ProductEventPublisher announces created products.
type ProductEventPublisher interface {
	PublishProductsCreated(ctx context.Context, products []domain.Product) error
}

// ProductFixture loads products through a ProductRepository, which may be
// the database or the catalog HTTP API.
type ProductFixture struct {
	repo   repository.ProductRepository
	events ProductEventPublisher
	logger *slog.Logger
}

// NewProductFixture creates the "product" fixture. events may be nil.
func NewProductFixture(repo repository.ProductRepository, events ProductEventPublisher, logger *slog.Logger) *ProductFixture {
	return &ProductFixture{repo: repo, events: events, logger: logger}
}

// Name implements fixture.Fixture.
func (f *ProductFixture) Name() string { return "product" }

// Load implements fixture.Fixture.
func (f *ProductFixture) Load(ctx context.Context, opts fixture.Options) error {
	var o customOptions[domain.Product]
	if err := decodeOptions(f.Name(), opts, &o); err != nil {
		return err
	}
	return f.LoadProducts(ctx, o.Custom)
}

// LoadProducts fills in defaults and creates the products. Missing codes
// become UUIDs, missing slugs are derived from the name and the main taxon is
// always among the product's taxons. A failed event publish is logged and
// does not fail the load.
func (f *ProductFixture) LoadProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := make([]domain.Product, len(products))
	usedSlugs := make(map[string]bool, len(products))
	for i, p := range products {
		if err := validator.Validate(p); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("product %q: %v", p.Name, err))
		}
		if p.Code == "" {
			p.Code = uuid.New().String()
		}
		if p.Slug == "" {
			p.Slug = slug.Unique(p.Name, func(s string) bool { return usedSlugs[s] })
		}
		usedSlugs[p.Slug] = true
		if p.MainTaxon != "" && !p.HasTaxon(p.MainTaxon) {
			p.Taxons = append([]string{p.MainTaxon}, p.Taxons...)
		}
		batch[i] = p
	}

	if err := f.repo.CreateProducts(ctx, batch); err != nil {
		return fmt.Errorf("create products: %w", err)
	}
	fixture.RecordLoaded(ctx, len(batch))
	f.logger.DebugContext(ctx, "products loaded", slog.Int("count", len(batch)))

	if f.events != nil {
		if err := f.events.PublishProductsCreated(ctx, batch); err != nil {
			f.logger.WarnContext(ctx, "failed to publish product.created events",
				slog.Int("count", len(batch)),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
