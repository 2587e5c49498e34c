package style

import "strings"

// Entry is one style declaration found in a [V4+ Styles] section.
type Entry struct {
	Line   int // 1-based line number in the document
	Name   string
	Font   string
	Size   string
	Fields []string
}

// List returns the style lines of every [V4+ Styles] section in text.
func List(text string) []Entry {
	var entries []Entry
	inStyles := false

	for i, line := range strings.Split(text, "\n") {
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if isSectionHeader(line) {
			inStyles = strings.TrimSpace(line) == stylesHeader
			continue
		}
		if !inStyles || !strings.HasPrefix(line, stylePrefix) {
			continue
		}

		body := strings.TrimSpace(strings.TrimPrefix(line, stylePrefix))
		fields := strings.Split(body, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		entry := Entry{Line: i + 1, Name: fields[0], Fields: fields}
		if len(fields) > 1 {
			entry.Font = fields[1]
		}
		if len(fields) > 2 {
			entry.Size = fields[2]
		}
		entries = append(entries, entry)
	}
	return entries
}
