package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleQuote() *types.ItemizedQuote {
	return &types.ItemizedQuote{
		ID:             "5d1c7a9e-0000-5000-8000-000000000000",
		CatalogVersion: "2026.10-builtin",
		CatalogHash:    "0123456789abcdef0123456789abcdef",
		Items: []types.LineItem{
			{Kind: types.KindPlan, Description: "Experience More, 3 lines x $66.67 (autopay)", Amount: dec("200.01"), Recurring: true},
			{Kind: types.KindFinancing, Description: "iPhone | Pro Max installment", Amount: dec("16.625"), Recurring: true, LineIndex: 1},
			{Kind: types.KindServiceTax, Description: "Service tax", Amount: dec("28.882888"), Recurring: true},
			{Kind: types.KindDeviceTax, Description: "Device sales tax", Amount: dec("83.93"), LineIndex: 1},
			{Kind: types.KindFirstMonth, Description: "First month of service", Amount: dec("245.517888")},
		},
		TotalMonthly:    dec("245.517888"),
		OneTimeSubtotal: dec("83.93"),
		TotalUpfront:    dec("329.447888"),
	}
}

func render(t *testing.T, r *Registry, name string, q *types.ItemizedQuote) string {
	t.Helper()
	f, err := r.Get(name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf, q))
	return buf.String()
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry(Options{})
	assert.Equal(t, []string{"html", "json", "markdown", "table", "yaml"}, r.Names())

	f, err := r.Get("  JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f.Format())

	_, err = r.Get("xml")
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidRequest(err))
	assert.Contains(t, err.Error(), "html, json, markdown, table, yaml")

	err = r.Register(&JSONFormatter{})
	require.Error(t, err)
	assert.True(t, ierr.IsType(err, ierr.TypeConfig))
}

func TestTableShowsRoundedAmounts(t *testing.T) {
	out := render(t, NewRegistry(Options{}), "table", sampleQuote())

	assert.Contains(t, out, "Quote 5d1c7a9e-0000-5000-8000-000000000000")
	assert.Contains(t, out, "Catalog 2026.10-builtin (0123456789ab)")
	assert.Contains(t, out, "MONTHLY")
	assert.Contains(t, out, "DUE AT SIGNING")
	assert.Contains(t, out, "$245.52")
	assert.Contains(t, out, "$329.45")
	assert.NotContains(t, out, "245.517888")
	assert.NotContains(t, out, "WARNING")
}

func TestTableShowExact(t *testing.T) {
	out := render(t, NewRegistry(Options{ShowExact: true}), "table", sampleQuote())

	assert.Contains(t, out, "EXACT")
	assert.Contains(t, out, "245.517888")
	assert.Contains(t, out, "$245.52")
}

func TestTableWarnings(t *testing.T) {
	q := sampleQuote()
	q.Warnings = []string{"PRINCIPAL CLAMPED: line 1"}
	out := render(t, NewRegistry(Options{}), "table", q)
	assert.Contains(t, out, "WARNING: PRINCIPAL CLAMPED: line 1")
}

func TestJSONKeepsExactAmounts(t *testing.T) {
	out := render(t, NewRegistry(Options{}), "json", sampleQuote())

	var got types.ItemizedQuote
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.TotalMonthly.Equal(dec("245.517888")))
	assert.Len(t, got.Items, 5)
	assert.Contains(t, out, `"total_upfront": "329.447888"`)
}

func TestYAMLUsesJSONFieldNames(t *testing.T) {
	out := render(t, NewRegistry(Options{}), "yaml", sampleQuote())

	assert.Contains(t, out, "catalog_version: 2026.10-builtin")
	assert.Contains(t, out, `total_monthly: "245.517888"`)
	assert.NotContains(t, out, "{")

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "329.447888", doc["total_upfront"])
	items, ok := doc["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 5)
}

func TestMarkdownTables(t *testing.T) {
	out := render(t, NewRegistry(Options{}), "markdown", sampleQuote())

	assert.Contains(t, out, "## Quote `5d1c7a9e-0000-5000-8000-000000000000`")
	assert.Contains(t, out, "### Monthly")
	assert.Contains(t, out, "### Due at signing")
	assert.Contains(t, out, `iPhone \| Pro Max installment`)
	assert.Contains(t, out, "| **Total monthly** |  | **$245.52** |")
	assert.Equal(t, 2, strings.Count(out, "|---|---:|---:|\n"))
}

func TestHTMLIsSanitizedTable(t *testing.T) {
	q := sampleQuote()
	q.Items[0].Description = `<script>alert("x")</script>Plan`
	out := render(t, NewRegistry(Options{}), "html", q)

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h3>Monthly</h3>")
	assert.Contains(t, out, "$245.52")
	assert.NotContains(t, out, "<script>")
}
