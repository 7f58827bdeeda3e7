package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	"github.com/utafrali/catalog-fixtures/internal/repository"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/slug"
	"github.com/utafrali/catalog-fixtures/pkg/validator"
)

// TaxonFixture loads taxons. Parents may be defined earlier in the same batch
// or already be stored.
type TaxonFixture struct {
	repo   repository.TaxonRepository
	logger *slog.Logger
}

// NewTaxonFixture creates the "taxon" fixture.
func NewTaxonFixture(repo repository.TaxonRepository, logger *slog.Logger) *TaxonFixture {
	return &TaxonFixture{repo: repo, logger: logger}
}

// Name implements fixture.Fixture.
func (f *TaxonFixture) Name() string { return "taxon" }

// Load implements fixture.Fixture.
func (f *TaxonFixture) Load(ctx context.Context, opts fixture.Options) error {
	var o customOptions[domain.Taxon]
	if err := decodeOptions(f.Name(), opts, &o); err != nil {
		return err
	}
	return f.LoadTaxons(ctx, o.Custom)
}

// LoadTaxons orders taxons parents-first, derives missing slugs from the
// parent's slug and upserts them by code.
func (f *TaxonFixture) LoadTaxons(ctx context.Context, taxons []domain.Taxon) error {
	if len(taxons) == 0 {
		return nil
	}
	for _, t := range taxons {
		if err := validator.Validate(t); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("taxon %s: %v", t.Code, err))
		}
	}

	ordered, err := parentsFirst(taxons)
	if err != nil {
		return err
	}

	slugs := make(map[string]string, len(ordered))
	for i := range ordered {
		t := &ordered[i]
		if t.Slug == "" {
			prefix, err := f.parentSlug(ctx, t, slugs)
			if err != nil {
				return err
			}
			t.Slug = prefix + slug.Generate(t.Name)
		}
		slugs[t.Code] = t.Slug
	}

	if err := f.repo.UpsertTaxons(ctx, ordered); err != nil {
		return fmt.Errorf("upsert taxons: %w", err)
	}

	fixture.RecordLoaded(ctx, len(ordered))
	f.logger.DebugContext(ctx, "taxons loaded", slog.Int("count", len(ordered)))
	return nil
}

// parentSlug returns "<parent slug>/" for a child taxon, looking the parent
// up in the batch first and the store second.
func (f *TaxonFixture) parentSlug(ctx context.Context, t *domain.Taxon, batch map[string]string) (string, error) {
	if t.IsRoot() {
		return "", nil
	}
	if s, ok := batch[*t.Parent]; ok {
		return s + "/", nil
	}

	parent, err := f.repo.FindByCode(ctx, *t.Parent)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.InvalidInput(fmt.Sprintf("taxon %s: parent %s does not exist", t.Code, *t.Parent))
		}
		return "", fmt.Errorf("find parent taxon %s: %w", *t.Parent, err)
	}
	return parent.Slug + "/", nil
}

// parentsFirst orders taxons so that a parent defined in the batch precedes
// its children, keeping the input order otherwise.
func parentsFirst(taxons []domain.Taxon) ([]domain.Taxon, error) {
	inBatch := make(map[string]bool, len(taxons))
	for _, t := range taxons {
		if inBatch[t.Code] {
			return nil, apperrors.InvalidInput(fmt.Sprintf("taxon %s is defined twice", t.Code))
		}
		inBatch[t.Code] = true
	}

	ordered := make([]domain.Taxon, 0, len(taxons))
	placed := make(map[string]bool, len(taxons))
	pending := taxons
	for len(pending) > 0 {
		var next []domain.Taxon
		for _, t := range pending {
			if t.IsRoot() || !inBatch[*t.Parent] || placed[*t.Parent] {
				ordered = append(ordered, t)
				placed[t.Code] = true
				continue
			}
			next = append(next, t)
		}
		if len(next) == len(pending) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("taxon %s: parent cycle", next[0].Code))
		}
		pending = next
	}
	return ordered, nil
}
