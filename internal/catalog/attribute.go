package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	"github.com/utafrali/catalog-fixtures/internal/repository"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/validator"
)

// AttributeFixture loads product attribute definitions.
type AttributeFixture struct {
	repo   repository.AttributeRepository
	logger *slog.Logger
}

// NewAttributeFixture creates the "product_attribute" fixture.
func NewAttributeFixture(repo repository.AttributeRepository, logger *slog.Logger) *AttributeFixture {
	return &AttributeFixture{repo: repo, logger: logger}
}

// Name implements fixture.Fixture.
func (f *AttributeFixture) Name() string { return "product_attribute" }

// Load implements fixture.Fixture.
func (f *AttributeFixture) Load(ctx context.Context, opts fixture.Options) error {
	var o customOptions[domain.Attribute]
	if err := decodeOptions(f.Name(), opts, &o); err != nil {
		return err
	}
	return f.LoadAttributes(ctx, o.Custom)
}

// LoadAttributes upserts attributes by code.
func (f *AttributeFixture) LoadAttributes(ctx context.Context, attributes []domain.Attribute) error {
	if len(attributes) == 0 {
		return nil
	}
	for _, a := range attributes {
		if err := validator.Validate(a); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("attribute %s: %v", a.Code, err))
		}
		if !domain.IsValidAttributeType(a.Type) {
			return apperrors.InvalidInput(fmt.Sprintf("attribute %s: unknown type %q", a.Code, a.Type))
		}
	}

	if err := f.repo.UpsertAttributes(ctx, attributes); err != nil {
		return fmt.Errorf("upsert attributes: %w", err)
	}

	fixture.RecordLoaded(ctx, len(attributes))
	f.logger.DebugContext(ctx, "attributes loaded", slog.Int("count", len(attributes)))
	return nil
}
