// Package render turns the structured records produced by the core into one
// of the supported output formats. The format is parsed once at the CLI
// boundary; the core stays oblivious to rendering.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidFormat indicates an unsupported output-format token. It is
// reported before any network activity occurs.
var ErrInvalidFormat = errors.New("invalid output format")

// Format is a closed set of output renderings.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatRaw
)

// ParseFormat maps a user-supplied token to a Format. FormatRaw is only
// meaningful for single-message output; callers that render listings should
// reject it themselves.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "raw":
		return FormatRaw, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
	}
}

// String returns the format token.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Render serializes a single structured value. FormatRaw expects raw message
// bytes and passes them through untouched.
func (f Format) Render(v any) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case FormatYAML:
		return yaml.Marshal(v)
	case FormatTOML:
		return toml.Marshal(v)
	case FormatRaw:
		raw, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("raw format requires message bytes, got %T", v)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidFormat, f)
	}
}

// RenderList serializes a listing. TOML cannot represent a top-level array,
// so the list is wrapped in a single-key table for that format only.
func (f Format) RenderList(key string, v any) ([]byte, error) {
	if f == FormatTOML {
		return toml.Marshal(map[string]any{key: v})
	}
	return f.Render(v)
}
