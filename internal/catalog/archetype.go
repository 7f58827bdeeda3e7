package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	"github.com/utafrali/catalog-fixtures/internal/repository"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/validator"
)

// ArchetypeFixture loads product archetypes. Referenced attributes and
// options must already be stored.
type ArchetypeFixture struct {
	repo       repository.ArchetypeRepository
	attributes repository.AttributeRepository
	options    repository.OptionRepository
	logger     *slog.Logger
}

// NewArchetypeFixture creates the "product_archetype" fixture.
func NewArchetypeFixture(
	repo repository.ArchetypeRepository,
	attributes repository.AttributeRepository,
	options repository.OptionRepository,
	logger *slog.Logger,
) *ArchetypeFixture {
	return &ArchetypeFixture{repo: repo, attributes: attributes, options: options, logger: logger}
}

// Name implements fixture.Fixture.
func (f *ArchetypeFixture) Name() string { return "product_archetype" }

// Load implements fixture.Fixture.
func (f *ArchetypeFixture) Load(ctx context.Context, opts fixture.Options) error {
	var o customOptions[domain.Archetype]
	if err := decodeOptions(f.Name(), opts, &o); err != nil {
		return err
	}
	return f.LoadArchetypes(ctx, o.Custom)
}

// LoadArchetypes checks references and upserts archetypes by code.
func (f *ArchetypeFixture) LoadArchetypes(ctx context.Context, archetypes []domain.Archetype) error {
	if len(archetypes) == 0 {
		return nil
	}

	var attrCodes, optCodes []string
	for _, a := range archetypes {
		if err := validator.Validate(a); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("archetype %s: %v", a.Code, err))
		}
		attrCodes = append(attrCodes, a.Attributes...)
		optCodes = append(optCodes, a.Options...)
	}

	if err := requireCodes(ctx, "attribute", attrCodes, f.attributes.ExistingCodes); err != nil {
		return err
	}
	if err := requireCodes(ctx, "option", optCodes, f.options.ExistingCodes); err != nil {
		return err
	}

	if err := f.repo.UpsertArchetypes(ctx, archetypes); err != nil {
		return fmt.Errorf("upsert archetypes: %w", err)
	}

	fixture.RecordLoaded(ctx, len(archetypes))
	f.logger.DebugContext(ctx, "archetypes loaded", slog.Int("count", len(archetypes)))
	return nil
}

// requireCodes fails with ErrInvalidInput listing every code that exists
// returns false for.
func requireCodes(
	ctx context.Context,
	kind string,
	codes []string,
	exists func(context.Context, []string) (map[string]bool, error),
) error {
	if len(codes) == 0 {
		return nil
	}
	found, err := exists(ctx, codes)
	if err != nil {
		return fmt.Errorf("check %s codes: %w", kind, err)
	}

	var missing []string
	for _, c := range codes {
		if !found[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.InvalidInput(fmt.Sprintf("unknown %s codes: %s", kind, strings.Join(missing, ", ")))
	}
	return nil
}
