package patterns

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a pattern file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml or toml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported pattern format %q (want json, yaml or toml)", s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

type patternFile struct {
	Patterns []Pattern `json:"patterns" yaml:"patterns" toml:"patterns"`
}

// Export writes patterns to w as a {patterns: [...]} document.
func Export(w io.Writer, patterns []Pattern, f Format) error {
	doc := patternFile{Patterns: patterns}
	if doc.Patterns == nil {
		doc.Patterns = []Pattern{}
	}

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported pattern format %q", f)
	}
}

// Import reads a pattern document and validates every entry. Nothing is
// returned if any pattern is invalid.
func Import(r io.Reader, f Format) ([]Pattern, error) {
	var doc patternFile

	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&doc)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&doc)
	case FormatTOML:
		err = toml.NewDecoder(r).Decode(&doc)
	default:
		return nil, fmt.Errorf("unsupported pattern format %q", f)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode %s patterns: %w", f, err)
	}

	seen := make(map[string]bool, len(doc.Patterns))
	for _, p := range doc.Patterns {
		if _, err := compile(p); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w %q: duplicate name", ErrInvalidPattern, p.Name)
		}
		seen[p.Name] = true
	}
	return doc.Patterns, nil
}
