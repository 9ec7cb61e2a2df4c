package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"wireless-quote/core/types"
	ierr "wireless-quote/internal/errors"
)

// JSONFormatter renders indented JSON. Amounts are exact decimal strings.
type JSONFormatter struct{}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the quote as JSON
func (f *JSONFormatter) Render(w io.Writer, q *types.ItemizedQuote) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(q)
}

// YAMLFormatter renders block-style YAML keyed by the JSON field names
type YAMLFormatter struct{}

// Format returns FormatYAML
func (f *YAMLFormatter) Format() Format { return FormatYAML }

// Render writes the quote as YAML
func (f *YAMLFormatter) Render(w io.Writer, q *types.ItemizedQuote) error {
	node, err := ToYAMLNode(q)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return ierr.Internal("encode yaml", err)
	}
	return enc.Close()
}

// ToYAMLNode converts v through its JSON encoding so the YAML document uses
// the same field names, order and decimal strings as the JSON output.
func ToYAMLNode(v interface{}) (*yaml.Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ierr.Internal("encode json", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ierr.Internal("decode json as yaml", err)
	}
	blockStyle(&doc)
	return &doc, nil
}

// blockStyle drops the flow and quoting styles JSON input leaves behind.
// Strings that would read back as numbers keep their !!str tag, so the
// encoder still quotes decimal amounts.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
