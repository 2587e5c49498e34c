package style

import "strings"

const (
	stylesHeader = "[V4+ Styles]"
	formatPrefix = "Format:"
	stylePrefix  = "Style:"

	// DefaultName is the style every dialogue line falls back to.
	DefaultName = "Default"
)

var lineDefaults = map[string]string{
	KeyFontName:       "Arial",
	KeyFontSize:       "20",
	KeyPrimaryColor:   "&H00FFFFFF",
	KeySecondaryColor: "&H000000FF",
	KeyOutlineColor:   "&H00000000",
	KeyBackColor:      "&H80000000",
	KeyBold:           "0",
	KeyItalic:         "0",
	KeyOutline:        "2",
	KeyShadow:         "0",
	KeyAlignment:      "2",
	KeyMarginLeft:     "10",
	KeyMarginRight:    "10",
	KeyMarginVertical: "10",
}

func (c Config) value(key string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return lineDefaults[key]
}

// BuildLine synthesizes a 23-field V4+ style line named name.
// Underline, StrikeOut, ScaleX/Y, Spacing, Angle, BorderStyle and Encoding
// are fixed.
func BuildLine(cfg Config, name string) string {
	fields := []string{
		name,
		cfg.value(KeyFontName),
		cfg.value(KeyFontSize),
		cfg.value(KeyPrimaryColor),
		cfg.value(KeySecondaryColor),
		cfg.value(KeyOutlineColor),
		cfg.value(KeyBackColor),
		cfg.value(KeyBold),
		cfg.value(KeyItalic),
		"0", "0", "100", "100",
		"0", "0", "1",
		cfg.value(KeyOutline),
		cfg.value(KeyShadow),
		cfg.value(KeyAlignment),
		cfg.value(KeyMarginLeft),
		cfg.value(KeyMarginRight),
		cfg.value(KeyMarginVertical),
		"1",
	}
	return stylePrefix + " " + strings.Join(fields, ",")
}

// Result describes what Apply did to a document.
type Result struct {
	Text     string
	Replaced bool // an existing Default line was rewritten
	Inserted bool // a Default line was added after the Format line
}

// Apply returns text with its Default style rewritten from cfg.
func Apply(text string, cfg Config) string {
	return Patch(text, cfg).Text
}

// Patch is Apply with a report of the change made. Only the first Default
// style line in [V4+ Styles] is replaced; later ones pass through. When no
// Default line exists a new one goes right after the section's Format
// line. A document without the section comes back unchanged.
func Patch(text string, cfg Config) Result {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+1)

	inStyles := false
	formatIdx := -1
	replaced := false

	for _, line := range lines {
		if isSectionHeader(line) {
			inStyles = strings.TrimSpace(line) == stylesHeader
			out = append(out, line)
			continue
		}
		if !inStyles {
			out = append(out, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, formatPrefix):
			if formatIdx < 0 {
				formatIdx = len(out)
			}
			out = append(out, line)
		case !replaced && strings.HasPrefix(line, stylePrefix) && styleName(line) == DefaultName:
			out = append(out, BuildLine(cfg, DefaultName)+lineEnding(line))
			replaced = true
		default:
			out = append(out, line)
		}
	}

	if replaced {
		return Result{Text: strings.Join(out, "\n"), Replaced: true}
	}
	if formatIdx < 0 {
		return Result{Text: text}
	}

	newLine := BuildLine(cfg, DefaultName) + lineEnding(out[formatIdx])
	out = append(out, "")
	copy(out[formatIdx+2:], out[formatIdx+1:])
	out[formatIdx+1] = newLine
	return Result{Text: strings.Join(out, "\n"), Inserted: true}
}

func isSectionHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")
}

// styleName returns the Name field of a "Style:" line.
func styleName(line string) string {
	rest := strings.TrimPrefix(line, stylePrefix)
	name, _, _ := strings.Cut(rest, ",")
	return strings.TrimSpace(name)
}

// CRLF documents keep their terminator on synthesized lines.
func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}
