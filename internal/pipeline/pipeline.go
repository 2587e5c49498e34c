// Package pipeline runs one video file through extraction, conversion,
// styling and remuxing.
//
// The stages are strictly linear:
//
//	Validate → ToolCheck → FormatCheck → Setup → Analyze → TrackSelect →
//	Extract → ConvertIfNeeded → Style → Merge → [Replace] → Cleanup
//
// Any failing stage ends the run. Cleanup always runs.
package pipeline

import (
	"context"
	"errors"

	"github.com/mgpai22/substyle/internal/container"
	"github.com/mgpai22/substyle/internal/editor"
	"github.com/mgpai22/substyle/internal/logging"
	"github.com/mgpai22/substyle/internal/style"
)

// Stage names a pipeline step.
type Stage string

const (
	StageValidate    Stage = "validate"
	StageToolCheck   Stage = "tool_check"
	StageFormatCheck Stage = "format_check"
	StageSetup       Stage = "setup"
	StageAnalyze     Stage = "analyze"
	StageTrackSelect Stage = "track_select"
	StageExtract     Stage = "extract"
	StageConvert     Stage = "convert"
	StageStyle       Stage = "style"
	StageMerge       Stage = "merge"
	StageReplace     Stage = "replace"
	StageCleanup     Stage = "cleanup"
)

var (
	ErrInputNotFound    = errors.New("input file not found")
	ErrNoTools          = errors.New("no video processing tools available")
	ErrUnsupported      = errors.New("unsupported file type")
	ErrNoSubtitleTracks = errors.New("no subtitle tracks found")
	ErrTrackNotFound    = errors.New("subtitle track not found")
	ErrToolFailed       = errors.New("external tool failed")
	ErrStyleConfig      = errors.New("style configuration failed")
)

// ConfirmPrompt is shown while the editor is open.
const ConfirmPrompt = "Press Enter after you've finished styling the subtitles in Aegisub..."

// Request describes one run.
type Request struct {
	Input string
	// Output defaults to the input path with the configured suffix.
	Output string
	// TrackID selects a track; nil takes the first one listed.
	TrackID *int
	// StyleConfig holds inline overrides, used only without StyleConfigFile.
	StyleConfig     style.Config
	StyleConfigFile string
	ManualStyling   bool
	// ReplaceOriginal swaps the output into the input's place after merging,
	// keeping a backup.
	ReplaceOriginal bool
}

// Converter normalizes a subtitle file to ASS.
type Converter interface {
	ToASS(ctx context.Context, in, out string) error
}

// Editor opens a subtitle file for manual editing.
type Editor interface {
	Available() bool
	Open(ctx context.Context, path string, wait bool) error
}

// StyleMode records how the subtitle was styled.
type StyleMode string

const (
	StyleNone   StyleMode = "none"
	StyleManual StyleMode = "manual"
	StyleConfig StyleMode = "config"
)

// Result summarizes a successful run.
type Result struct {
	RunID     string
	Output    string
	Track     container.Track
	Converted bool
	Styled    StyleMode
	Backup    string
}

// Options wires a Runner's collaborators.
type Options struct {
	Registry  *container.Registry
	Converter Converter
	Editor    Editor
	// Confirmer blocks while the editor is open. Without one the editor is
	// waited on instead.
	Confirmer editor.Confirmer

	TempDir    string
	TempPrefix string

	OutputSuffix   string
	BackupDirName  string
	MergeLanguage  string
	MergeTrackName string

	Logger *logging.Logger
	// Observer is told about every stage as it starts.
	Observer func(Stage)
}
