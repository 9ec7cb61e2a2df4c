package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"wireless-quote/core/determinism"
	"wireless-quote/core/types"
)

// TableFormatter renders an aligned plain-text table
type TableFormatter struct {
	opts Options
}

// Format returns FormatTable
func (f *TableFormatter) Format() Format { return FormatTable }

// Render writes the table
func (f *TableFormatter) Render(w io.Writer, q *types.ItemizedQuote) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Quote %s\n", q.ID)
	fmt.Fprintf(tw, "Catalog %s (%s)\n", q.CatalogVersion, shortHash(q.CatalogHash))

	for _, s := range sections(q) {
		fmt.Fprintln(tw)
		if f.opts.ShowExact {
			fmt.Fprintf(tw, "%s\tLINE\tAMOUNT\tEXACT\n", strings.ToUpper(s.title))
		} else {
			fmt.Fprintf(tw, "%s\tLINE\tAMOUNT\n", strings.ToUpper(s.title))
		}
		for _, item := range s.items {
			f.row(tw, item.Description, lineLabel(item), item.Amount.String(), determinism.FormatMoney(item.Amount))
		}
		f.row(tw, s.totalLabel, "", s.total.String(), determinism.FormatMoney(s.total))
	}

	if len(q.Warnings) > 0 {
		fmt.Fprintln(tw)
		for _, warning := range q.Warnings {
			fmt.Fprintf(tw, "WARNING: %s\n", warning)
		}
	}
	return tw.Flush()
}

func (f *TableFormatter) row(w io.Writer, label, line, exact, display string) {
	if f.opts.ShowExact {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", label, line, display, exact)
		return
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", label, line, display)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
