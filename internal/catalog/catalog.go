// Package catalog holds the catalog fixtures: one loader per record kind and
// the tshirt_product fixture that seeds a complete T-shirt catalog through
// them.
package catalog

import (
	"context"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/validator"
)

// TaxonLoader persists a batch of taxons.
type TaxonLoader interface {
	LoadTaxons(ctx context.Context, taxons []domain.Taxon) error
}

// TaxonLookup finds a stored taxon by code, returning apperrors.ErrNotFound
// when there is none.
type TaxonLookup interface {
	FindByCode(ctx context.Context, code string) (*domain.Taxon, error)
}

// AttributeLoader persists a batch of attribute definitions.
type AttributeLoader interface {
	LoadAttributes(ctx context.Context, attributes []domain.Attribute) error
}

// OptionLoader persists a batch of option definitions.
type OptionLoader interface {
	LoadOptions(ctx context.Context, options []domain.Option) error
}

// ArchetypeLoader persists a batch of archetypes.
type ArchetypeLoader interface {
	LoadArchetypes(ctx context.Context, archetypes []domain.Archetype) error
}

// ProductLoader persists a batch of products.
type ProductLoader interface {
	LoadProducts(ctx context.Context, products []domain.Product) error
}

// RandomProvider is the source of generated values.
type RandomProvider interface {
	Word() string
	UUID() string
	Element(choices []string) string
	// IntBetween returns an integer in [min, max].
	IntBetween(min, max int) int
}

// customOptions is the option schema shared by the record loaders:
//
//	options:
//	  custom:
//	    - {name: Category, code: CATEGORY}
type customOptions[T any] struct {
	Custom []T `yaml:"custom" validate:"dive"`
}

// decodeOptions strictly decodes and validates the options of the named
// fixture into out.
func decodeOptions(name string, opts fixture.Options, out any) error {
	if err := opts.Decode(out); err != nil {
		return apperrors.InvalidConfiguration(name, err)
	}
	if err := validator.Validate(out); err != nil {
		return apperrors.InvalidConfiguration(name, err)
	}
	return nil
}
