// Package output renders itemized quotes for people and machines.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable CLI table
	FormatTable Format = "table"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML with the JSON field names
	FormatYAML Format = "yaml"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatHTML is a sanitized HTML fragment rendered from the markdown report
	FormatHTML Format = "html"
)

// Options tunes rendering
type Options struct {
	// ShowExact prints unrounded amounts next to display amounts
	ShowExact bool
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes q to w
	Render(w io.Writer, q *types.ItemizedQuote) error
}

// Registry maps format names to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	md := &MarkdownFormatter{opts: opts}
	for _, f := range []Formatter{
		&TableFormatter{opts: opts},
		&JSONFormatter{},
		&YAMLFormatter{},
		md,
		NewHTMLFormatter(md),
	} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter; a format may only be registered once
func (r *Registry) Register(f Formatter) error {
	if _, exists := r.formatters[f.Format()]; exists {
		return ierr.Config("formatter %q already registered", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format name
func (r *Registry) Get(name string) (Formatter, error) {
	f, ok := r.formatters[Format(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, ierr.InvalidRequest("unknown output format %q (want one of %s)", name, strings.Join(r.Names(), ", "))
	}
	return f, nil
}

// Names lists the registered format names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// section groups items for the human formats
type section struct {
	title      string
	items      []types.LineItem
	totalLabel string
	total      decimal.Decimal
}

func sections(q *types.ItemizedQuote) []section {
	return []section{
		{
			title:      "Monthly",
			items:      q.Recurring(),
			totalLabel: "Total monthly",
			total:      q.TotalMonthly,
		},
		{
			title:      "Due at signing",
			items:      q.OneTime(),
			totalLabel: "Total due at signing",
			total:      q.TotalUpfront,
		},
	}
}

func lineLabel(i types.LineItem) string {
	if i.LineIndex == 0 {
		return ""
	}
	return fmt.Sprintf("%d", i.LineIndex)
}
