package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

// Codes seeded by the tshirt_product fixture.
const (
	TaxonCategory  = "CATEGORY"
	TaxonBrand     = "BRAND"
	TaxonTshirts   = "TSHIRTS"
	TaxonSuperTees = "SUPER-TEES"

	AttributeTshirtBrand      = "TSHIRT-BRAND"
	AttributeTshirtCollection = "TSHIRT-COLLECTION"
	AttributeTshirtMaterial   = "TSHIRT-MATERIAL"

	OptionTshirtColor = "TSHIRT-COLOR"
	OptionTshirtSize  = "TSHIRT-SIZE"

	ArchetypeTshirt = "TSHIRT"
)

// Collection years are drawn from this inclusive range.
const (
	CollectionYearMin = 1995
	CollectionYearMax = 2012
)

var (
	tshirtBrands    = []string{"Nike", "Adidas", "JKM-476 Streetwear", "Potato", "Centipede Wear"}
	tshirtSeasons   = []string{"Summer", "Winter", "Spring", "Autumn"}
	tshirtMaterials = []string{"Centipede", "Wool", "Centipede 10% / Wool 90%", "Potato 100%"}
)

type tshirtOptions struct {
	Amount *fixture.Int `yaml:"amount" validate:"required,gte=0"`
}

// TshirtProductFixture seeds the taxons, attributes, options and archetype
// T-shirts need, then the requested number of random T-shirt products.
// Loaders are called in that order; nothing is rolled back when a later one
// fails.
type TshirtProductFixture struct {
	taxons     TaxonLoader
	lookup     TaxonLookup
	attributes AttributeLoader
	options    OptionLoader
	archetypes ArchetypeLoader
	products   ProductLoader
	random     RandomProvider
	logger     *slog.Logger
}

// NewTshirtProductFixture creates the "tshirt_product" fixture.
func NewTshirtProductFixture(
	taxons TaxonLoader,
	lookup TaxonLookup,
	attributes AttributeLoader,
	options OptionLoader,
	archetypes ArchetypeLoader,
	products ProductLoader,
	random RandomProvider,
	logger *slog.Logger,
) *TshirtProductFixture {
	return &TshirtProductFixture{
		taxons:     taxons,
		lookup:     lookup,
		attributes: attributes,
		options:    options,
		archetypes: archetypes,
		products:   products,
		random:     random,
		logger:     logger,
	}
}

// Name implements fixture.Fixture.
func (f *TshirtProductFixture) Name() string { return "tshirt_product" }

// Load implements fixture.Fixture. The only option is amount, a required
// non-negative integer.
func (f *TshirtProductFixture) Load(ctx context.Context, opts fixture.Options) error {
	var o tshirtOptions
	if err := decodeOptions(f.Name(), opts, &o); err != nil {
		return err
	}
	amount := int(*o.Amount)

	taxons, err := f.taxonBatch(ctx)
	if err != nil {
		return err
	}
	if err := f.taxons.LoadTaxons(ctx, taxons); err != nil {
		return fmt.Errorf("load taxons: %w", err)
	}
	if err := f.attributes.LoadAttributes(ctx, tshirtAttributes()); err != nil {
		return fmt.Errorf("load attributes: %w", err)
	}
	if err := f.options.LoadOptions(ctx, tshirtOptionsBatch()); err != nil {
		return fmt.Errorf("load options: %w", err)
	}
	if err := f.archetypes.LoadArchetypes(ctx, tshirtArchetypes()); err != nil {
		return fmt.Errorf("load archetypes: %w", err)
	}
	if err := f.products.LoadProducts(ctx, f.generateProducts(amount)); err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	f.logger.InfoContext(ctx, "t-shirt catalog seeded",
		slog.Int("taxons", len(taxons)),
		slog.Int("products", amount),
	)
	return nil
}

// taxonBatch returns the missing root taxons followed by the two T-shirt
// taxons. Roots that already exist are not recreated.
func (f *TshirtProductFixture) taxonBatch(ctx context.Context) ([]domain.Taxon, error) {
	var batch []domain.Taxon
	for _, root := range []domain.Taxon{
		{Name: "Category", Code: TaxonCategory},
		{Name: "Brand", Code: TaxonBrand},
	} {
		_, err := f.lookup.FindByCode(ctx, root.Code)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrNotFound):
			batch = append(batch, root)
		default:
			return nil, fmt.Errorf("find taxon %s: %w", root.Code, err)
		}
	}

	category, brand := TaxonCategory, TaxonBrand
	return append(batch,
		domain.Taxon{Name: "T-Shirts", Code: TaxonTshirts, Parent: &category},
		domain.Taxon{Name: "Super Tees", Code: TaxonSuperTees, Parent: &brand},
	), nil
}

func tshirtAttributes() []domain.Attribute {
	return []domain.Attribute{
		{Name: "T-Shirt brand", Code: AttributeTshirtBrand, Type: domain.AttributeTypeText},
		{Name: "T-Shirt collection", Code: AttributeTshirtCollection, Type: domain.AttributeTypeText},
		{Name: "T-Shirt material", Code: AttributeTshirtMaterial, Type: domain.AttributeTypeText},
	}
}

func tshirtOptionsBatch() []domain.Option {
	return []domain.Option{
		{
			Name: "T-Shirt color",
			Code: OptionTshirtColor,
			Values: []domain.OptionValue{
				{Code: "TSHIRT-COLOR-RED", Value: "Red"},
				{Code: "TSHIRT-COLOR-BLACK", Value: "Black"},
				{Code: "TSHIRT-COLOR-WHITE", Value: "White"},
			},
		},
		{
			Name: "T-Shirt size",
			Code: OptionTshirtSize,
			Values: []domain.OptionValue{
				{Code: "TSHIRT-SIZE-S", Value: "S"},
				{Code: "TSHIRT-SIZE-M", Value: "M"},
				{Code: "TSHIRT-SIZE-L", Value: "L"},
				{Code: "TSHIRT-SIZE-XL", Value: "XL"},
				{Code: "TSHIRT-SIZE-XXL", Value: "XXL"},
			},
		},
	}
}

func tshirtArchetypes() []domain.Archetype {
	return []domain.Archetype{{
		Name:       "T-Shirt",
		Code:       ArchetypeTshirt,
		Attributes: []string{AttributeTshirtBrand, AttributeTshirtCollection, AttributeTshirtMaterial},
		Options:    []string{OptionTshirtColor, OptionTshirtSize},
	}}
}

func (f *TshirtProductFixture) generateProducts(amount int) []domain.Product {
	products := make([]domain.Product, 0, amount)
	for i := 0; i < amount; i++ {
		products = append(products, domain.Product{
			Name:      fmt.Sprintf(`T-Shirt "%s"`, f.random.Word()),
			Code:      f.random.UUID(),
			MainTaxon: TaxonTshirts,
			Archetype: ArchetypeTshirt,
			Taxons:    []string{TaxonTshirts, TaxonSuperTees},
			Attributes: []domain.AttributeValue{
				{Attribute: AttributeTshirtBrand, Value: f.random.Element(tshirtBrands)},
				{Attribute: AttributeTshirtCollection, Value: fmt.Sprintf("Sylius %s %d",
					f.random.Element(tshirtSeasons),
					f.random.IntBetween(CollectionYearMin, CollectionYearMax))},
				{Attribute: AttributeTshirtMaterial, Value: f.random.Element(tshirtMaterials)},
			},
		})
	}
	return products
}
