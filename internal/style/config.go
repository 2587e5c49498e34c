package style

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Recognised style attribute keys.
const (
	KeyFontName       = "font_name"
	KeyFontSize       = "font_size"
	KeyPrimaryColor   = "primary_color"
	KeySecondaryColor = "secondary_color"
	KeyOutlineColor   = "outline_color"
	KeyBackColor      = "back_color"
	KeyBold           = "bold"
	KeyItalic         = "italic"
	KeyOutline        = "outline"
	KeyShadow         = "shadow"
	KeyAlignment      = "alignment"
	KeyMarginLeft     = "margin_left"
	KeyMarginRight    = "margin_right"
	KeyMarginVertical = "margin_vertical"
)

// ErrNoStyleSection is returned when a style document has no
// "subtitle_style" object.
var ErrNoStyleSection = errors.New("no subtitle_style section")

// Config maps a style attribute name to the literal text that ends up in
// the style line. Absent keys take their defaults when a line is built.
type Config map[string]string

// Keys returns the configured attribute names in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unknown returns configured keys the line builder never reads.
func (c Config) Unknown() []string {
	var unknown []string
	for _, k := range c.Keys() {
		if _, ok := lineDefaults[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	return unknown
}

type document struct {
	SubtitleStyle map[string]json.RawMessage `json:"subtitle_style"`
}

// LoadFile reads a JSON style document from disk.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a JSON style document. Strings keep their unquoted text;
// numbers, booleans and null keep their JSON literal. A document without a
// subtitle_style object yields an empty Config and ErrNoStyleSection.
func Parse(data []byte) (Config, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid style JSON: %w", err)
	}
	if len(doc.SubtitleStyle) == 0 {
		return Config{}, ErrNoStyleSection
	}

	cfg := make(Config, len(doc.SubtitleStyle))
	for key, raw := range doc.SubtitleStyle {
		cfg[key] = literal(raw)
	}
	return cfg, nil
}

func literal(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	// null unmarshals into a string without error
	if bytes.Equal(raw, []byte("null")) {
		return "null"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		return compact.String()
	}
	return string(bytes.TrimSpace(raw))
}
