package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/substyle/internal/style"
)

const (
	assStyleFormat  = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	assEventsFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
)

// inline markup understood by SRT/VTT players, mapped to ASS override tags
var tagReplacer = strings.NewReplacer(
	"<i>", `{\i1}`, "</i>", `{\i0}`,
	"<b>", `{\b1}`, "</b>", `{\b0}`,
	"<u>", `{\u1}`, "</u>", `{\u0}`,
	"<s>", `{\s1}`, "</s>", `{\s0}`,
)

// ASSWriter renders cues as an Advanced SubStation Alpha script with a single
// Default style.
type ASSWriter struct {
	Title string
	Style style.Config
}

// writes the subtitle to an ASS file
func (w *ASSWriter) WriteFile(sub *Subtitle, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create ASS file: %w", err)
	}
	if err := w.Write(file, sub); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (w *ASSWriter) Write(out io.Writer, sub *Subtitle) error {
	title := w.Title
	if title == "" {
		title = "Converted subtitles"
	}

	bw := bufio.NewWriter(out)

	// script info section
	fmt.Fprintln(bw, "[Script Info]")
	fmt.Fprintf(bw, "Title: %s\n", title)
	fmt.Fprintln(bw, "ScriptType: v4.00+")
	fmt.Fprintln(bw, "WrapStyle: 0")
	fmt.Fprintln(bw, "PlayResX: 384")
	fmt.Fprintln(bw, "PlayResY: 288")
	fmt.Fprintln(bw, "ScaledBorderAndShadow: yes")
	fmt.Fprintln(bw)

	// v4+ styles section
	fmt.Fprintln(bw, "[V4+ Styles]")
	fmt.Fprintln(bw, assStyleFormat)
	fmt.Fprintln(bw, style.BuildLine(w.Style, style.DefaultName))
	fmt.Fprintln(bw)

	// events section
	fmt.Fprintln(bw, "[Events]")
	fmt.Fprintln(bw, assEventsFormat)
	for _, entry := range sub.Entries {
		fmt.Fprintf(bw, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			style.DefaultName,
			escapeASSText(entry.Text))
	}

	return bw.Flush()
}

func formatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func escapeASSText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = tagReplacer.Replace(text)
	return strings.ReplaceAll(text, "\n", `\N`)
}
