package subtitle

import (
	"time"
)

// represents single subtitle cue
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents a parsed subtitle track
type Subtitle struct {
	Entries []Entry
	Format  Format
}

// represents a detected subtitle format
type Format string

const (
	FormatSRT     Format = "srt"
	FormatVTT     Format = "vtt"
	FormatASS     Format = "ass"
	FormatUnknown Format = "unknown"
)

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatSRT:
		return ".srt"
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".sub"
	}
}
