package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectFormatBytes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Format
	}{
		{"ass", "[Script Info]\nTitle: x\n", FormatASS},
		{"ass wins over srt", "1\n00:00:01,000 --> 00:00:02,000\nhi\n\n[Script Info]\n", FormatASS},
		{"ass marker anywhere", "garbage\n[Script Info]", FormatASS},
		{"vtt", "WEBVTT\n\n00:01.000 --> 00:02.000\nhi\n", FormatVTT},
		{"vtt leading whitespace", "\n\n  WEBVTT - title\n", FormatVTT},
		{"vtt with bom", "\ufeffWEBVTT\n", FormatVTT},
		{"srt", "1\n00:00:01,000 --> 00:00:04,000\nHello\n", FormatSRT},
		{"srt crlf", "1\r\n00:00:01,000 --> 00:00:04,000\r\nHello\r\n", FormatSRT},
		{"srt mid file", "junk\n12\n01:02:03,456 --> 01:02:04,000\n", FormatSRT},
		{"srt needs comma millis", "1\n00:00:01.000 --> 00:00:04.000\n", FormatUnknown},
		{"unknown", "just some text", FormatUnknown},
		{"empty", "", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormatBytes([]byte(tt.content)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDetectFormatInvalidUTF8(t *testing.T) {
	data := append([]byte{0xc3, 0x28, 0xa0, '\n'}, []byte("[Script Info]\n")...)
	if got := DetectFormatBytes(data); got != FormatASS {
		t.Errorf("expected ass, got %s", got)
	}
}

func TestDetectFormatUTF16(t *testing.T) {
	// "WEBVTT\n" as UTF-16LE with BOM
	data := []byte{0xff, 0xfe, 'W', 0, 'E', 0, 'B', 0, 'V', 0, 'T', 0, 'T', 0, '\n', 0}
	if got := DetectFormatBytes(data); got != FormatVTT {
		t.Errorf("expected vtt, got %s", got)
	}
}

func TestDetectFormatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.srt")
	if err := os.WriteFile(path, []byte("1\n00:00:01,000 --> 00:00:04,000\nHi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := DetectFormat(path)
	if err != nil {
		t.Fatalf("DetectFormat failed: %v", err)
	}
	if got != FormatSRT {
		t.Errorf("expected srt, got %s", got)
	}

	if _, err := DetectFormat(filepath.Join(dir, "missing.srt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.ass")
	empty := filepath.Join(dir, "empty.ass")
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Validate(full); err != nil {
		t.Errorf("expected valid file, got %v", err)
	}
	if err := Validate(empty); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
	if err := Validate(dir); !errors.Is(err, ErrNotFile) {
		t.Errorf("expected ErrNotFile, got %v", err)
	}
	if err := Validate(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
