package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
)

const suitesYAML = `
suites:
  default:
    fixtures:
      taxon:
        priority: 20
        options:
          custom:
            - name: Category
              code: CATEGORY
      tshirt_product:
        options:
          amount: 5
      product_attribute:
        priority: 20
      product_option: ~
  empty:
    fixtures: {}
`

func fixtureNames(s Suite) []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Fixture
	}
	return names
}

func TestParseSuites_Ordering(t *testing.T) {
	suites, err := ParseSuites([]byte(suitesYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "empty"}, suites.Names())

	s, err := suites.Get("default")
	require.NoError(t, err)
	assert.Equal(t, "default", s.Name)
	assert.Equal(t, []string{"product_attribute", "taxon", "product_option", "tshirt_product"}, fixtureNames(s))

	var opts amountOptions
	require.NoError(t, s.Entries[3].Options.Decode(&opts))
	assert.Equal(t, 5, *opts.Amount)
	assert.True(t, s.Entries[2].Options.IsZero())
}

func TestParseSuites_UnknownKey(t *testing.T) {
	_, err := ParseSuites([]byte("suites:\n  default:\n    fixturez: {}\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
}

func TestSuites_GetUnknown(t *testing.T) {
	suites, err := ParseSuites([]byte(suitesYAML))
	require.NoError(t, err)

	_, err = suites.Get("missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLoadSuites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(suitesYAML), 0o600))

	suites, err := LoadSuites(path)
	require.NoError(t, err)
	assert.Len(t, suites, 2)
}

func TestLoadSuites_MissingFile(t *testing.T) {
	_, err := LoadSuites(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
}

func TestSuite_Validate(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&funcFixture{name: "taxon"}))

	ok := Suite{Name: "s", Entries: []Entry{{Fixture: "taxon"}}}
	assert.NoError(t, ok.Validate(reg))

	bad := Suite{Name: "s", Entries: []Entry{{Fixture: "taxon"}, {Fixture: "nope"}}}
	err := bad.Validate(reg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "nope")
}

func TestLoadSuites_RepositoryExample(t *testing.T) {
	suites, err := LoadSuites("../../fixtures.yaml")

	require.NoError(t, err)
	assert.Equal(t, []string{"default", "demo"}, suites.Names())

	demo, err := suites.Get("demo")
	require.NoError(t, err)
	var order []string
	for _, e := range demo.Entries {
		order = append(order, e.Fixture)
	}
	assert.Equal(t, []string{"taxon", "product_attribute", "product", "tshirt_product"}, order)
}
