package subtitle

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrEmptyFile = errors.New("subtitle file is empty")
	ErrNotFile   = errors.New("subtitle path is not a regular file")
)

var srtCueRegex = regexp.MustCompile(
	`\d+\n\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}`,
)

// DetectFormat sniffs a subtitle file's content. Undecodable bytes never
// fail detection; only a read error does.
func DetectFormat(path string) (Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	return DetectFormatBytes(data), nil
}

// DetectFormatBytes checks, in order: an "[Script Info]" marker anywhere,
// a leading WEBVTT header, then an SRT cue.
func DetectFormatBytes(data []byte) Format {
	return detectText(decodeText(data))
}

func detectText(content string) Format {
	switch {
	case strings.Contains(content, "[Script Info]"):
		return FormatASS
	case strings.HasPrefix(strings.TrimSpace(content), "WEBVTT"):
		return FormatVTT
	case srtCueRegex.MatchString(content):
		return FormatSRT
	default:
		return FormatUnknown
	}
}

// decodes as UTF-8 unless a BOM says otherwise, replacing invalid
// sequences and folding CRLF line endings
func decodeText(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text := string(data)
	if out, _, err := transform.Bytes(decoder, data); err == nil {
		text = string(out)
	} else {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// Validate checks that path is a regular, non-empty file.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("subtitle file not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotFile)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return nil
}
