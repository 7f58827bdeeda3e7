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

// OptionFixture loads product option definitions with their values.
type OptionFixture struct {
	repo   repository.OptionRepository
	logger *slog.Logger
}

// NewOptionFixture creates the "product_option" fixture.
func NewOptionFixture(repo repository.OptionRepository, logger *slog.Logger) *OptionFixture {
	return &OptionFixture{repo: repo, logger: logger}
}

// Name implements fixture.Fixture.
func (f *OptionFixture) Name() string { return "product_option" }

// Load implements fixture.Fixture.
func (f *OptionFixture) Load(ctx context.Context, opts fixture.Options) error {
	var o customOptions[domain.Option]
	if err := decodeOptions(f.Name(), opts, &o); err != nil {
		return err
	}
	return f.LoadOptions(ctx, o.Custom)
}

// LoadOptions upserts options by code. Each option needs at least one value.
func (f *OptionFixture) LoadOptions(ctx context.Context, options []domain.Option) error {
	if len(options) == 0 {
		return nil
	}
	for _, o := range options {
		if err := validator.Validate(o); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("option %s: %v", o.Code, err))
		}
	}

	if err := f.repo.UpsertOptions(ctx, options); err != nil {
		return fmt.Errorf("upsert options: %w", err)
	}

	fixture.RecordLoaded(ctx, len(options))
	f.logger.DebugContext(ctx, "options loaded", slog.Int("count", len(options)))
	return nil
}
