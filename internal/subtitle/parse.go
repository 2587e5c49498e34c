package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	srtTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
	)
	vttTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimestampRegex = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// ParseFile parses an SRT or WebVTT file according to its detected format.
// The content is decoded the same way detection sees it, so UTF-16 files
// with a byte-order mark parse too.
func ParseFile(path string) (*Subtitle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	text := decodeText(data)

	switch format := detectText(text); format {
	case FormatSRT:
		return ParseSRT(strings.NewReader(text))
	case FormatVTT:
		return ParseVTT(strings.NewReader(text))
	default:
		return nil, fmt.Errorf("cannot parse %s subtitles natively", format)
	}
}

// ParseSRT reads SubRip cues.
func ParseSRT(r io.Reader) (*Subtitle, error) {
	scanner := bufio.NewScanner(r)
	cues := &cueBuilder{}
	var current *Entry
	lineNum := 0

	for scanner.Scan() {
		line := cleanLine(scanner.Text(), lineNum == 0)
		lineNum++

		if strings.TrimSpace(line) == "" {
			cues.flush()
			current = nil
			continue
		}

		if current == nil {
			if index, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = cues.start(Entry{Index: index})
				continue
			}
		}

		if current != nil && current.StartTime == 0 && current.EndTime == 0 {
			if m := srtTimestampRegex.FindStringSubmatch(line); len(m) == 9 {
				start, end, err := parseCueTimes(m[1:5], m[5:9])
				if err != nil {
					return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
				}
				current.StartTime, current.EndTime = start, end
				continue
			}
		}

		cues.text(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}
	cues.flush()

	return &Subtitle{Entries: cues.entries, Format: FormatSRT}, nil
}

// ParseVTT reads WebVTT cues, skipping NOTE and STYLE blocks.
func ParseVTT(r io.Reader) (*Subtitle, error) {
	scanner := bufio.NewScanner(r)
	cues := &cueBuilder{}
	headerParsed := false
	lineNum := 0

	for scanner.Scan() {
		line := cleanLine(scanner.Text(), lineNum == 0)
		lineNum++
		trimmed := strings.TrimSpace(line)

		if !headerParsed && strings.HasPrefix(trimmed, "WEBVTT") {
			headerParsed = true
			continue
		}

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			cues.flush()
			continue
		}

		var start, end time.Duration
		var err error
		if m := vttTimestampRegex.FindStringSubmatch(line); len(m) == 9 {
			start, end, err = parseCueTimes(m[1:5], m[5:9])
		} else if m := vttShortTimestampRegex.FindStringSubmatch(line); len(m) == 7 {
			start, end, err = parseCueTimes(
				[]string{"00", m[1], m[2], m[3]},
				[]string{"00", m[4], m[5], m[6]},
			)
		} else {
			cues.text(line)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
		}

		cues.flush()
		cues.start(Entry{
			Index:     len(cues.entries) + 1,
			StartTime: start,
			EndTime:   end,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT: %w", err)
	}
	cues.flush()

	return &Subtitle{Entries: cues.entries, Format: FormatVTT}, nil
}

// accumulates cue text until a blank line or next timing line
type cueBuilder struct {
	entries []Entry
	current *Entry
	lines   []string
}

func (b *cueBuilder) start(e Entry) *Entry {
	b.current = &e
	b.lines = nil
	return b.current
}

func (b *cueBuilder) text(line string) {
	if b.current != nil {
		b.lines = append(b.lines, line)
	}
}

func (b *cueBuilder) flush() {
	if b.current != nil && len(b.lines) > 0 {
		b.current.Text = strings.Join(b.lines, "\n")
		b.entries = append(b.entries, *b.current)
	}
	b.current = nil
	b.lines = nil
}

func cleanLine(line string, first bool) string {
	if first {
		line = strings.TrimPrefix(line, "\ufeff")
	}
	return strings.TrimSuffix(line, "\r")
}

// parses [hh, mm, ss, mmm] groups for both ends of a cue
func parseCueTimes(startParts, endParts []string) (time.Duration, time.Duration, error) {
	start, err := parseTimestamp(startParts)
	if err != nil {
		return 0, 0, fmt.Errorf("start: %w", err)
	}
	end, err := parseTimestamp(endParts)
	if err != nil {
		return 0, 0, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

func parseTimestamp(parts []string) (time.Duration, error) {
	units := []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond}
	var total time.Duration
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}
