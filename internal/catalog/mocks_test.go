package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/catalog-fixtures/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTaxonLoader struct{ mock.Mock }

func (m *mockTaxonLoader) LoadTaxons(ctx context.Context, taxons []domain.Taxon) error {
	return m.Called(ctx, taxons).Error(0)
}

type mockTaxonLookup struct{ mock.Mock }

func (m *mockTaxonLookup) FindByCode(ctx context.Context, code string) (*domain.Taxon, error) {
	args := m.Called(ctx, code)
	if t := args.Get(0); t != nil {
		return t.(*domain.Taxon), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAttributeLoader struct{ mock.Mock }

func (m *mockAttributeLoader) LoadAttributes(ctx context.Context, attributes []domain.Attribute) error {
	return m.Called(ctx, attributes).Error(0)
}

type mockOptionLoader struct{ mock.Mock }

func (m *mockOptionLoader) LoadOptions(ctx context.Context, options []domain.Option) error {
	return m.Called(ctx, options).Error(0)
}

type mockArchetypeLoader struct{ mock.Mock }

func (m *mockArchetypeLoader) LoadArchetypes(ctx context.Context, archetypes []domain.Archetype) error {
	return m.Called(ctx, archetypes).Error(0)
}

type mockProductLoader struct{ mock.Mock }

func (m *mockProductLoader) LoadProducts(ctx context.Context, products []domain.Product) error {
	return m.Called(ctx, products).Error(0)
}

// fakeRandom returns predictable values: words and UUIDs are numbered,
// Element cycles through the choices and IntBetween walks the range.
type fakeRandom struct {
	words, uuids, elements, ints int
}

func (r *fakeRandom) Word() string {
	r.words++
	return "word" + strconv.Itoa(r.words)
}

func (r *fakeRandom) UUID() string {
	r.uuids++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", r.uuids)
}

func (r *fakeRandom) Element(choices []string) string {
	c := choices[r.elements%len(choices)]
	r.elements++
	return c
}

func (r *fakeRandom) IntBetween(min, max int) int {
	v := min + r.ints%(max-min+1)
	r.ints++
	return v
}

// repository mocks

type mockTaxonRepo struct{ mock.Mock }

func (m *mockTaxonRepo) FindByCode(ctx context.Context, code string) (*domain.Taxon, error) {
	args := m.Called(ctx, code)
	if t := args.Get(0); t != nil {
		return t.(*domain.Taxon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTaxonRepo) ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	args := m.Called(ctx, codes)
	found, _ := args.Get(0).(map[string]bool)
	return found, args.Error(1)
}

func (m *mockTaxonRepo) UpsertTaxons(ctx context.Context, taxons []domain.Taxon) error {
	return m.Called(ctx, taxons).Error(0)
}

type mockCodeRepo struct{ mock.Mock }

func (m *mockCodeRepo) ExistingCodes(ctx context.Context, codes []string) (map[string]bool, error) {
	args := m.Called(ctx, codes)
	found, _ := args.Get(0).(map[string]bool)
	return found, args.Error(1)
}

func (m *mockCodeRepo) UpsertAttributes(ctx context.Context, attributes []domain.Attribute) error {
	return m.Called(ctx, attributes).Error(0)
}

func (m *mockCodeRepo) UpsertOptions(ctx context.Context, options []domain.Option) error {
	return m.Called(ctx, options).Error(0)
}

func (m *mockCodeRepo) UpsertArchetypes(ctx context.Context, archetypes []domain.Archetype) error {
	return m.Called(ctx, archetypes).Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) CreateProducts(ctx context.Context, products []domain.Product) error {
	return m.Called(ctx, products).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishProductsCreated(ctx context.Context, products []domain.Product) error {
	return m.Called(ctx, products).Error(0)
}
