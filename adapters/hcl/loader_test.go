package hcl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sourcegraph/conc/iter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireless-quote/core/catalog"
	ierr "wireless-quote/internal/errors"
)

func TestLoadFileMatchesBuiltinCatalog(t *testing.T) {
	c, err := NewLoader(nil).LoadFile(filepath.Join("testdata", "default.hcl"))
	require.NoError(t, err)
	require.True(t, c.IsSealed())

	assert.Equal(t, catalog.DefaultVersion, c.Version())
	assert.Equal(t, catalog.Default().Hash(), c.Hash())
}

const miniCatalog = `
version = "mini"

plan "basic" {
  accessory_rates = { watch = "7.5" }
  rate {
    min_lines = 1
    per_line  = "40"
  }
  rate {
    min_lines = 1
    autopay   = true
    per_line  = "35"
  }
}

device "phone" {
  category = "phone"
  variant {
    storage_gb   = 128
    retail_price = "499.99"
  }
}

insurance_tier "all" {
  min     = "0"
  premium = "7"
}

jurisdiction "j" {
  service_tax_rate           = "0.05"
  device_sales_tax_rate      = "0.06"
  per_line_regulatory_fee    = "1"
  per_line_federal_surcharge = "1"
  per_device_activation_fee  = "10"
}
`

func TestParseMinimalCatalog(t *testing.T) {	c, err := NewLoader(nil).Parse([]byte(miniCatalog), "mini.hcl")
	require.NoError(t, err)

	rate, err := c.RatePerLine("basic", 4, true)
	require.NoError(t, err)
	assert.Equal(t, "35", rate.String())

	price, err := c.RetailPrice("phone", 0)
	require.NoError(t, err)
	assert.Equal(t, "499.99", price.String())

	watch, err := c.AccessoryRate("basic", "watch")
	require.NoError(t, err)
	assert.Equal(t, "7.5", watch.String())
}

func TestParseSameFilenameTwice(t *testing.T) {
	loader := NewLoader(nil)

	first, err := loader.Parse([]byte(miniCatalog), "catalog.hcl")
	require.NoError(t, err)
	edited := strings.Replace(miniCatalog, `version = "mini"`, `version = "mini-2"`, 1)
	second, err := loader.Parse([]byte(edited), "catalog.hcl")
	require.NoError(t, err)

	assert.Equal(t, "mini", first.Version())
	assert.Equal(t, "mini-2", second.Version())
	assert.NotEqual(t, first.Hash(), second.Hash())
}

func TestParseConcurrently(t *testing.T) {
	loader := NewLoader(nil)
	versions := iter.Map([]string{"a", "b", "c", "d"}, func(v *string) string {
		src := strings.Replace(miniCatalog, `version = "mini"`, `version = "`+*v+`"`, 1)
		c, err := loader.Parse([]byte(src), "catalog.hcl")
		if err != nil {
			return err.Error()
		}
		return c.Version()
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, versions)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := NewLoader(nil).Parse([]byte(`plan "x" {`), "broken.hcl")
	require.Error(t, err)
	assert.True(t, ierr.IsType(err, ierr.TypeParsing))
}

func TestParseBadDecimal(t *testing.T) {
	src := `
version = "bad"

insurance_tier "all" {
  min     = "zero"
  premium = "7"
}
`
	_, err := NewLoader(nil).Parse([]byte(src), "bad.hcl")
	require.Error(t, err)
	assert.True(t, ierr.IsType(err, ierr.TypeParsing))
	assert.Contains(t, err.Error(), `"zero" is not a decimal`)
}

func TestParseInvalidTablesFailValidation(t *testing.T) {
	// Parses cleanly but has no plans, devices or jurisdictions.
	src := `
version = "empty"

insurance_tier "all" {
  min     = "0"
  premium = "7"
}
`
	_, err := NewLoader(nil).Parse([]byte(src), "empty.hcl")
	require.Error(t, err)
	assert.True(t, ierr.IsType(err, ierr.TypeConfig))
}

func TestLoadFuncSeesEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.hcl")

	orig, err := os.ReadFile(filepath.Join("testdata", "default.hcl"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, orig, 0o644))

	l := NewLoader(nil)
	store, err := catalog.NewStore(catalog.Default(), nil)
	require.NoError(t, err)

	swapped, err := store.Reload(l.LoadFunc(path))
	require.NoError(t, err)
	assert.False(t, swapped)

	edited := append([]byte(nil), orig...)
	edited = append(edited, []byte(`
promotion "spring-tablet" {
  device_categories  = ["tablet"]
  credit_amount      = "100"
  credit_term_months = 24
}
`)...)
	require.NoError(t, os.WriteFile(path, edited, 0o644))

	swapped, err = store.Reload(l.LoadFunc(path))
	require.NoError(t, err)
	assert.True(t, swapped)
	assert.Len(t, store.Current().Promotions(), 4)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(nil).LoadFile(filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
	assert.True(t, ierr.IsType(err, ierr.TypeParsing))
}
