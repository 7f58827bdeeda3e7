package repository

import (
	"context"

	"github.com/utafrali/catalog-fixtures/internal/domain"
)

// TaxonRepository defines taxon persistence operations.
type TaxonRepository interface {
	// FindByCode returns the taxon with the given code, or apperrors.ErrNotFound.
	FindByCode(ctx context.Context, code string) (*domain.Taxon, error)

	// ExistingCodes reports which of codes are already stored.
	ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error)

	// UpsertTaxons inserts or updates taxons by code in one transaction.
	// Parents must precede their children in the slice.
	UpsertTaxons(ctx context.Context, taxons []domain.Taxon) error
}

// AttributeRepository defines attribute persistence operations.
type AttributeRepository interface {
	ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error)
	UpsertAttributes(ctx context.Context, attributes []domain.Attribute) error
}

// OptionRepository defines option persistence operations.
type OptionRepository interface {
	ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error)
	UpsertOptions(ctx context.Context, options []domain.Option) error
}

// ArchetypeRepository defines archetype persistence operations.
type ArchetypeRepository interface {
	ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error)
	UpsertArchetypes(ctx context.Context, archetypes []domain.Archetype) error
}

// ProductRepository persists products. Implementations exist for PostgreSQL
// and for the catalog HTTP API.
type ProductRepository interface {
	// CreateProducts inserts products; a duplicate code yields
	// apperrors.ErrAlreadyExists.
	CreateProducts(ctx context.Context, products []domain.Product) error
}
