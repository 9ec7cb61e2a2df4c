package adapter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wireless-quote/core/engine"
	"wireless-quote/core/output"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

const scenarioJSON = `{
  "customer": {"is_new_customer": true},
  "plan_id": "experience-more",
  "autopay": true,
  "jurisdiction_id": "us-metro-a",
  "lines": [
    {"index": 1, "insured": true, "device": {"model_id": "iphone-17-pro-max", "storage_gb": 256, "financing_term_months": 24}},
    {"index": 2, "insured": true, "device": {"model_id": "iphone-17-pro-max", "storage_gb": 256, "financing_term_months": 24}},
    {"index": 3, "insured": true, "device": {"model_id": "iphone-17-pro-max", "storage_gb": 256, "financing_term_months": 24}}
  ],
  "accessories": []
}`

const scenarioYAML = `
customer:
  is_new_customer: true
plan_id: experience-more
autopay: true
jurisdiction_id: us-metro-a
lines:
  - index: 1
    insured: true
    device: {model_id: iphone-17-pro-max, storage_gb: 256, financing_term_months: 24}
  - index: 2
    insured: true
    device: {model_id: iphone-17-pro-max, storage_gb: 256, financing_term_months: 24}
  - index: 3
    insured: true
    device: {model_id: iphone-17-pro-max, storage_gb: 256, financing_term_months: 24}
accessories: []
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newAdapter(buf *bytes.Buffer) *CLIAdapter {
	a := NewCLIAdapter(engine.New(engine.Options{Strict: true}), output.NewRegistry(output.Options{}), nil)
	a.SetOutput(buf)
	return a
}

func TestRunJSONRequest(t *testing.T) {
	var buf bytes.Buffer
	err := newAdapter(&buf).Run(&CLIRequest{
		RequestFile: writeFile(t, "req.json", scenarioJSON),
		Format:      "json",
	})
	require.NoError(t, err)

	var q types.ItemizedQuote
	require.NoError(t, json.Unmarshal(buf.Bytes(), &q))
	assert.Equal(t, "384.07", q.DisplayMonthly().StringFixed(2))
	assert.Equal(t, "740.86", q.DisplayUpfront().StringFixed(2))
}

func TestYAMLAndJSONRequestsAgree(t *testing.T) {
	fromJSON, err := LoadRequests(writeFile(t, "req.json", scenarioJSON))
	require.NoError(t, err)
	fromYAML, err := LoadRequests(writeFile(t, "req.yaml", scenarioYAML))
	require.NoError(t, err)

	require.Len(t, fromYAML, 1)
	assert.Equal(t, fromJSON, fromYAML)
	assert.NotNil(t, fromYAML[0].Accessories)
}

func TestRunBatchRendersEveryQuote(t *testing.T) {
	var buf bytes.Buffer
	err := newAdapter(&buf).Run(&CLIRequest{
		RequestFile: writeFile(t, "batch.json", "["+scenarioJSON+","+scenarioJSON+"]"),
		Format:      "table",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("Total monthly")))
}

func TestParseRequestsRejectsBadInput(t *testing.T) {
	_, err := ParseRequests([]byte("  "))
	assert.True(t, ierr.IsInvalidRequest(err))

	_, err = ParseRequests([]byte("[]"))
	assert.True(t, ierr.IsInvalidRequest(err))

	_, err = ParseRequests([]byte(`{"plan_id": "essentials", "auto_pay": true}`))
	require.Error(t, err)
	assert.True(t, ierr.IsType(err, ierr.TypeParsing))
}

func TestRunUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := newAdapter(&buf).Run(&CLIRequest{
		RequestFile: writeFile(t, "req.json", scenarioJSON),
		Format:      "pdf",
	})
	assert.True(t, ierr.IsInvalidRequest(err))
	assert.Zero(t, buf.Len())
}

func TestRunMissingCatalogFile(t *testing.T) {
	var buf bytes.Buffer
	err := newAdapter(&buf).Run(&CLIRequest{
		RequestFile: writeFile(t, "req.json", scenarioJSON),
		CatalogPath: filepath.Join(t.TempDir(), "missing.hcl"),
		Format:      "json",
	})
	assert.True(t, ierr.IsType(err, ierr.TypeParsing))
}
