// Package adapter provides thin adapters over the core engine.
// The CLI adapter handles input and output only; all pricing is in the engine.
package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	hclloader "wireless-quote/adapters/hcl"
	"wireless-quote/core/catalog"
	"wireless-quote/core/engine"
	"wireless-quote/core/output"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// CLIAdapter is a thin wrapper around the core engine
type CLIAdapter struct {
	engine   *engine.Engine
	registry *output.Registry
	output   io.Writer
	logger   *zap.Logger
}

// NewCLIAdapter creates a new CLI adapter
func NewCLIAdapter(eng *engine.Engine, registry *output.Registry, logger *zap.Logger) *CLIAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CLIAdapter{
		engine:   eng,
		registry: registry,
		output:   os.Stdout,
		logger:   logger,
	}
}

// SetOutput sets the output writer
func (a *CLIAdapter) SetOutput(w io.Writer) {
	a.output = w
}

// CLIRequest is the CLI input
type CLIRequest struct {
	// RequestFile holds one request object or a list of them (JSON or YAML)
	RequestFile string

	// CatalogPath is an HCL catalog; empty uses the built-in catalog
	CatalogPath string

	// Format names the output formatter
	Format string
}

// Run prices every request in the file and renders each quote
func (a *CLIAdapter) Run(req *CLIRequest) error {
	formatter, err := a.registry.Get(req.Format)
	if err != nil {
		return err
	}

	cat, err := a.LoadCatalog(req.CatalogPath)
	if err != nil {
		return err
	}

	requests, err := LoadRequests(req.RequestFile)
	if err != nil {
		return err
	}

	quotes, err := a.engine.QuoteBatch(cat, requests)
	if err != nil {
		return err
	}

	for i, q := range quotes {
		if i > 0 && formatter.Format() == output.FormatTable {
			fmt.Fprintln(a.output)
		}
		if err := formatter.Render(a.output, q); err != nil {
			return ierr.Internal("render quote", err)
		}
	}
	return nil
}

// LoadCatalog loads an HCL catalog, or the built-in one when path is empty
func (a *CLIAdapter) LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		a.logger.Debug("using built-in catalog", zap.String("version", catalog.DefaultVersion))
		return catalog.Default(), nil
	}
	return hclloader.NewLoader(a.logger).LoadFile(path)
}

// LoadRequests reads quote requests from a JSON or YAML file
func LoadRequests(path string) ([]*types.QuoteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.Parsing(fmt.Sprintf("read request %s", path), err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, ierr.Parsing(fmt.Sprintf("parse request %s", path), err)
		}
	}
	return ParseRequests(data)
}

// ParseRequests decodes a JSON request object or array of request objects.
// Unknown fields are rejected so typos do not silently drop options.
func ParseRequests(data []byte) ([]*types.QuoteRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ierr.InvalidRequest("request file is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	if trimmed[0] == '[' {
		var reqs []*types.QuoteRequest
		if err := dec.Decode(&reqs); err != nil {
			return nil, ierr.Parsing("decode requests", err)
		}
		if len(reqs) == 0 {
			return nil, ierr.InvalidRequest("request list is empty")
		}
		return reqs, nil
	}

	var req types.QuoteRequest
	if err := dec.Decode(&req); err != nil {
		return nil, ierr.Parsing("decode request", err)
	}
	return []*types.QuoteRequest{&req}, nil
}

// yamlToJSON re-encodes YAML as JSON so requests share one decoding path
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
