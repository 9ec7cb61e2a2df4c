package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// MarkdownFormatter renders a markdown report with one table per section
type MarkdownFormatter struct {
	opts Options
}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render writes the markdown report
func (f *MarkdownFormatter) Render(w io.Writer, q *types.ItemizedQuote) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## Quote `%s`\n\n", q.ID)
	fmt.Fprintf(&b, "Catalog `%s` (`%s`)\n", q.CatalogVersion, shortHash(q.CatalogHash))

	for _, s := range sections(q) {
		fmt.Fprintf(&b, "\n### %s\n\n", s.title)
		if f.opts.ShowExact {
			b.WriteString("| Item | Line | Amount | Exact |\n|---|---:|---:|---:|\n")
		} else {
			b.WriteString("| Item | Line | Amount |\n|---|---:|---:|\n")
		}
		for _, item := range s.items {
			f.row(&b, escapeCell(item.Description), lineLabel(item), determinism.FormatMoney(item.Amount), item.Amount.String())
		}
		f.row(&b, "**"+s.totalLabel+"**", "", "**"+determinism.FormatMoney(s.total)+"**", s.total.String())
	}

	if len(q.Warnings) > 0 {
		b.WriteString("\n### Warnings\n\n")
		for _, warning := range q.Warnings {
			fmt.Fprintf(&b, "- %s\n", escapeCell(warning))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *MarkdownFormatter) row(b *strings.Builder, label, line, display, exact string) {
	if f.opts.ShowExact {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n", label, line, display, exact)
		return
	}
	fmt.Fprintf(b, "| %s | %s | %s |\n", label, line, display)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTMLFormatter renders the markdown report to sanitized HTML
type HTMLFormatter struct {
	markdown *MarkdownFormatter
	md       goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewHTMLFormatter creates an HTML formatter over a markdown formatter
func NewHTMLFormatter(markdown *MarkdownFormatter) *HTMLFormatter {
	return &HTMLFormatter{
		markdown: markdown,
		md:       goldmark.New(goldmark.WithExtensions(extension.Table)),
		policy:   newQuoteHTMLPolicy(),
	}
}

// Format returns FormatHTML
func (f *HTMLFormatter) Format() Format { return FormatHTML }

// Render writes the HTML fragment
func (f *HTMLFormatter) Render(w io.Writer, q *types.ItemizedQuote) error {
	var src bytes.Buffer
	if err := f.markdown.Render(&src, q); err != nil {
		return err
	}
	var html bytes.Buffer
	if err := f.md.Convert(src.Bytes(), &html); err != nil {
		return ierr.Internal("render markdown", err)
	}
	_, err := w.Write(f.policy.SanitizeBytes(html.Bytes()))
	return err
}

func newQuoteHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("align").OnElements("th", "td")
	policy.AllowStyles("text-align").OnElements("th", "td")
	return policy
}
