// Package mkv implements the Matroska capability on top of MKVToolNix.
package mkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/mgpai22/substyle/internal/container"
	"github.com/mgpai22/substyle/internal/deps"
	"github.com/mgpai22/substyle/internal/logging"
)

const (
	defaultMKVMerge   = "mkvmerge"
	defaultMKVExtract = "mkvextract"
	defaultMKVInfo    = "mkvinfo"

	undeterminedLanguage = "und"
)

// commandRunner executes a tool and returns its stdout. Errors carry the
// tool's trimmed output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Tools names the MKVToolNix binaries. Empty fields use the PATH defaults.
type Tools struct {
	MKVMerge   string
	MKVExtract string
	MKVInfo    string
}

// Processor drives mkvmerge, mkvextract and mkvinfo.
type Processor struct {
	tools  Tools
	logger *logging.Logger
	run    commandRunner
}

func New(tools Tools, logger *logging.Logger) *Processor {
	if tools.MKVMerge == "" {
		tools.MKVMerge = defaultMKVMerge
	}
	if tools.MKVExtract == "" {
		tools.MKVExtract = defaultMKVExtract
	}
	if tools.MKVInfo == "" {
		tools.MKVInfo = defaultMKVInfo
	}
	return &Processor{
		tools:  tools,
		logger: logging.OrNop(logger).Named("mkv"),
		run:    deps.Output,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (p *Processor) WithCommandRunner(r commandRunner) {
	if p != nil && r != nil {
		p.run = r
	}
}

// Capability exposes the processor to the container registry.
func (p *Processor) Capability() container.Capability {
	return container.Capability{
		Name:           "Matroska",
		Extensions:     []string{"mkv"},
		ToolsAvailable: p.ToolsAvailable,
		Analyze:        p.Analyze,
		Extract:        p.Extract,
		Merge:          p.Merge,
	}
}

// Requirements lists the binaries the processor needs.
func (p *Processor) Requirements() []deps.Requirement {
	version := []string{"--version"}
	return []deps.Requirement{
		{Name: "mkvinfo", Command: p.tools.MKVInfo, Description: "Matroska inspection", VersionArgs: version},
		{Name: "mkvextract", Command: p.tools.MKVExtract, Description: "Subtitle track extraction", VersionArgs: version},
		{Name: "mkvmerge", Command: p.tools.MKVMerge, Description: "Track analysis and remuxing", VersionArgs: version},
	}
}

// ToolsAvailable reports whether every MKVToolNix binary answers --version.
func (p *Processor) ToolsAvailable(ctx context.Context) bool {
	checker := deps.Checker{Run: p.run}
	for _, status := range checker.Check(ctx, p.Requirements()) {
		if !status.Available {
			p.logger.Debugw("mkvtoolnix unavailable", "tool", status.Name, "detail", status.Detail)
			return false
		}
	}
	return true
}

type identification struct {
	Tracks []struct {
		ID         int    `json:"id"`
		Type       string `json:"type"`
		Codec      string `json:"codec"`
		Properties struct {
			Language     string `json:"language"`
			TrackName    string `json:"track_name"`
			DefaultTrack bool   `json:"default_track"`
		} `json:"properties"`
	} `json:"tracks"`
}

// Analyze lists subtitle tracks using mkvmerge -J.
func (p *Processor) Analyze(ctx context.Context, path string) ([]container.Track, error) {
	out, err := p.run(ctx, p.tools.MKVMerge, "-J", path)
	if err != nil {
		return nil, fmt.Errorf("mkvmerge identify failed: %w", err)
	}
	tracks, err := parseIdentification(out)
	if err != nil {
		return nil, err
	}
	p.logger.Infow("analyzed tracks", "file", filepath.Base(path), "subtitle_tracks", len(tracks))
	return tracks, nil
}

func parseIdentification(data []byte) ([]container.Track, error) {
	var info identification
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse mkvmerge output: %w", err)
	}

	var tracks []container.Track
	for _, t := range info.Tracks {
		if t.Type != "subtitles" {
			continue
		}
		lang := t.Properties.Language
		if lang == "" {
			lang = undeterminedLanguage
		}
		tracks = append(tracks, container.Track{
			ID:       t.ID,
			Codec:    t.Codec,
			Language: lang,
			Name:     t.Properties.TrackName,
			Default:  t.Properties.DefaultTrack,
		})
	}
	return tracks, nil
}

// Extract writes track trackID of path to out.
func (p *Processor) Extract(ctx context.Context, path string, trackID int, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("create extraction dir: %w", err)
	}
	spec := strconv.Itoa(trackID) + ":" + out
	if _, err := p.run(ctx, p.tools.MKVExtract, path, "tracks", spec); err != nil {
		return fmt.Errorf("mkvextract failed: %w", err)
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("mkvextract did not produce %s: %w", filepath.Base(out), err)
	}
	p.logger.Infow("extracted track", "track", trackID, "output", out)
	return nil
}

// Merge drops every subtitle track of req.Input and adds req.Subtitle as the
// default track.
func (p *Processor) Merge(ctx context.Context, req container.MergeRequest) error {
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	args := buildMergeArgs(req)
	p.logger.Debugw("executing mkvmerge", "args", args)

	if _, err := p.run(ctx, p.tools.MKVMerge, args...); err != nil {
		if !isWarningExit(err) {
			_ = os.Remove(req.Output)
			return fmt.Errorf("mkvmerge failed: %w", err)
		}
		// exit status 1 means the file was written with warnings
		p.logger.Warnw("mkvmerge finished with warnings", "error", err)
	}
	if _, err := os.Stat(req.Output); err != nil {
		return fmt.Errorf("mkvmerge did not produce output file: %w", err)
	}
	p.logger.Infow("merged subtitles", "output", req.Output)
	return nil
}

func buildMergeArgs(req container.MergeRequest) []string {
	lang := req.Language
	if lang == "" {
		lang = undeterminedLanguage
	}
	return []string{
		"-o", req.Output,
		"--no-subtitles", req.Input,
		"--language", "0:" + lang,
		"--track-name", "0:" + req.TrackName,
		"--default-track", "0:yes",
		req.Subtitle,
	}
}

func isWarningExit(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == 1
}
