package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/cv-builder/internal/schemas"
)

// Format is the encoding of a record bundle document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the bundle format from a file extension.
// Anything that is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeBundle parses a record bundle, validates it against the records
// schema and decodes it into typed records. Schema violations are returned
// as *schemas.ValidationError.
func DecodeBundle(data []byte, format Format) (*Bundle, error) {
	var doc interface{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON bundle: %w", err)
		}
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse YAML bundle: %w", err)
		}
		keepTimestampsAsText(&root)
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML bundle: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", format)
	}

	if err := schemas.ValidateRecords(doc); err != nil {
		return nil, err
	}

	// Re-encode so YAML and JSON documents share one typed decoding path.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode bundle: %w", err)
	}

	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(normalized))
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &b, nil
}

// keepTimestampsAsText retags unquoted dates so they decode as the strings
// the document holds rather than time.Time.
func keepTimestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		keepTimestampsAsText(c)
	}
}

// EncodeBundle writes a bundle in the requested format.
func EncodeBundle(b *Bundle, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	if format != FormatYAML {
		return data, nil
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML bundle: %w", err)
	}
	return out, nil
}
