package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgpai22/substyle/internal/container"
	"github.com/mgpai22/substyle/internal/editor"
	"github.com/mgpai22/substyle/internal/style"
)

const assTrack = `[Script Info]
Title: ep01

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Verdana,18,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,1,0,2,20,20,20,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hello
`

const srtTrack = "1\n00:00:01,000 --> 00:00:02,000\nHello\n"

// fakeMKV records every tool invocation made through its capability.
type fakeMKV struct {
	available bool
	tracks    []container.Track
	content   string

	analyzeErr error
	extractErr error
	mergeErr   error

	calls     []string
	extracted int
	merged    container.MergeRequest
	mergedSub string
}

func (f *fakeMKV) capability() container.Capability {
	return container.Capability{
		Name:       "Matroska",
		Extensions: []string{"mkv"},
		ToolsAvailable: func(context.Context) bool {
			f.calls = append(f.calls, "tools")
			return f.available
		},
		Analyze: func(_ context.Context, path string) ([]container.Track, error) {
			f.calls = append(f.calls, "analyze")
			return f.tracks, f.analyzeErr
		},
		Extract: func(_ context.Context, path string, id int, out string) error {
			f.calls = append(f.calls, "extract")
			f.extracted = id
			if f.extractErr != nil {
				return f.extractErr
			}
			return os.WriteFile(out, []byte(f.content), 0o644)
		},
		Merge: func(_ context.Context, req container.MergeRequest) error {
			f.calls = append(f.calls, "merge")
			f.merged = req
			if f.mergeErr != nil {
				return f.mergeErr
			}
			data, err := os.ReadFile(req.Subtitle)
			if err != nil {
				return err
			}
			f.mergedSub = string(data)
			return os.WriteFile(req.Output, []byte("muxed"), 0o644)
		},
	}
}

type fakeConverter struct {
	calls int
	err   error
}

func (c *fakeConverter) ToASS(_ context.Context, in, out string) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(out, []byte(assTrack), 0o644)
}

type fakeEditor struct {
	available bool
	opened    []string
	waited    bool
	err       error
}

func (e *fakeEditor) Available() bool { return e.available }

func (e *fakeEditor) Open(_ context.Context, path string, wait bool) error {
	e.opened = append(e.opened, path)
	e.waited = wait
	return e.err
}

type harness struct {
	dir       string
	input     string
	mkv       *fakeMKV
	converter *fakeConverter
	editor    *fakeEditor
	stages    []Stage
	runner    *Runner
}

func newHarness(t *testing.T, opts ...func(*Options)) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dir:   dir,
		input: filepath.Join(dir, "ep01.mkv"),
		mkv: &fakeMKV{
			available: true,
			tracks:    []container.Track{{ID: 2, Codec: "SubStationAlpha", Language: "eng"}},
			content:   assTrack,
		},
		converter: &fakeConverter{},
		editor:    &fakeEditor{},
	}
	if err := os.WriteFile(h.input, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := container.NewRegistry(h.mkv.capability())
	if err != nil {
		t.Fatal(err)
	}
	o := Options{
		Registry:  reg,
		Converter: h.converter,
		Editor:    h.editor,
		TempDir:   filepath.Join(dir, "tmp"),
		Observer:  func(s Stage) { h.stages = append(h.stages, s) },
	}
	for _, fn := range opts {
		fn(&o)
	}
	h.runner, err = New(o)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func (h *harness) assertWorkspaceClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(h.dir, "tmp"))
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected workspace removed, found %d entries", len(entries))
	}
}

func intPtr(v int) *int { return &v }

func TestRunHappyPathASS(t *testing.T) {
	h := newHarness(t)

	res, err := h.runner.Process(context.Background(), Request{Input: h.input})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if h.mkv.extracted != 2 {
		t.Errorf("expected track 2 extracted, got %d", h.mkv.extracted)
	}
	if h.converter.calls != 0 {
		t.Errorf("expected no conversion, got %d calls", h.converter.calls)
	}
	if res.Converted || res.Styled != StyleNone {
		t.Errorf("unexpected result %+v", res)
	}
	if h.mkv.mergedSub != assTrack {
		t.Error("expected subtitle merged unmodified")
	}
	wantOut := filepath.Join(h.dir, "ep01_processed.mkv")
	if res.Output != wantOut || h.mkv.merged.Output != wantOut {
		t.Errorf("expected output %s, got %s", wantOut, res.Output)
	}
	if h.mkv.merged.Language != "eng" || h.mkv.merged.TrackName != "Styled Subtitles" {
		t.Errorf("unexpected merge metadata %+v", h.mkv.merged)
	}
	if filepath.Base(h.mkv.merged.Subtitle) != "extracted_2.ass" {
		t.Errorf("unexpected subtitle path %s", h.mkv.merged.Subtitle)
	}
	if res.RunID == "" {
		t.Error("expected run id")
	}

	want := []Stage{
		StageValidate, StageToolCheck, StageFormatCheck, StageSetup, StageAnalyze,
		StageTrackSelect, StageExtract, StageConvert, StageStyle, StageMerge, StageCleanup,
	}
	if len(h.stages) != len(want) {
		t.Fatalf("expected stages %v, got %v", want, h.stages)
	}
	for i := range want {
		if h.stages[i] != want[i] {
			t.Errorf("stage %d: expected %s, got %s", i, want[i], h.stages[i])
		}
	}
	h.assertWorkspaceClean(t)
}

func TestRunMissingInput(t *testing.T) {
	h := newHarness(t)

	ok := h.runner.Run(context.Background(), Request{Input: filepath.Join(h.dir, "nope.mkv")})
	if ok {
		t.Fatal("expected failure")
	}
	if len(h.mkv.calls) != 0 {
		t.Errorf("expected no tool calls, got %v", h.mkv.calls)
	}
	if len(h.stages) != 2 || h.stages[0] != StageValidate || h.stages[1] != StageCleanup {
		t.Errorf("expected validate then cleanup, got %v", h.stages)
	}

	_, err := h.runner.Process(context.Background(), Request{Input: h.dir})
	if !errors.Is(err, ErrInputNotFound) {
		t.Errorf("expected ErrInputNotFound for a directory, got %v", err)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *harness) Request
		wantErr error
	}{
		{
			name: "no tools",
			setup: func(h *harness) Request {
				h.mkv.available = false
				return Request{Input: h.input}
			},
			wantErr: ErrNoTools,
		},
		{
			name: "unsupported",
			setup: func(h *harness) Request {
				p := filepath.Join(h.dir, "clip.mp4")
				_ = os.WriteFile(p, []byte("x"), 0o644)
				return Request{Input: p}
			},
			wantErr: ErrUnsupported,
		},
		{
			name: "no tracks",
			setup: func(h *harness) Request {
				h.mkv.tracks = nil
				return Request{Input: h.input}
			},
			wantErr: ErrNoSubtitleTracks,
		},
		{
			name: "track missing",
			setup: func(h *harness) Request {
				return Request{Input: h.input, TrackID: intPtr(7)}
			},
			wantErr: ErrTrackNotFound,
		},
		{
			name: "analyze fails",
			setup: func(h *harness) Request {
				h.mkv.analyzeErr = errors.New("exit status 2")
				return Request{Input: h.input}
			},
			wantErr: ErrToolFailed,
		},
		{
			name: "extract fails",
			setup: func(h *harness) Request {
				h.mkv.extractErr = errors.New("exit status 2")
				return Request{Input: h.input}
			},
			wantErr: ErrToolFailed,
		},
		{
			name: "extraction leaves empty file",
			setup: func(h *harness) Request {
				h.mkv.content = ""
				return Request{Input: h.input}
			},
			wantErr: ErrToolFailed,
		},
		{
			name: "conversion fails",
			setup: func(h *harness) Request {
				h.mkv.content = srtTrack
				h.converter.err = errors.New("ffmpeg exploded")
				return Request{Input: h.input}
			},
			wantErr: ErrToolFailed,
		},
		{
			name: "merge fails",
			setup: func(h *harness) Request {
				h.mkv.mergeErr = errors.New("exit status 2")
				return Request{Input: h.input}
			},
			wantErr: ErrToolFailed,
		},
		{
			name: "style file missing",
			setup: func(h *harness) Request {
				return Request{Input: h.input, StyleConfigFile: filepath.Join(h.dir, "none.json")}
			},
			wantErr: ErrStyleConfig,
		},
		{
			name: "style file invalid",
			setup: func(h *harness) Request {
				p := filepath.Join(h.dir, "bad.json")
				_ = os.WriteFile(p, []byte("{"), 0o644)
				return Request{Input: h.input, StyleConfigFile: p}
			},
			wantErr: ErrStyleConfig,
		},
		{
			name: "editor fails to open",
			setup: func(h *harness) Request {
				h.editor.available = true
				h.editor.err = errors.New("exec format error")
				return Request{Input: h.input, ManualStyling: true}
			},
			wantErr: ErrToolFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := tt.setup(h)
			_, err := h.runner.Process(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if h.stages[len(h.stages)-1] != StageCleanup {
				t.Errorf("expected cleanup last, got %v", h.stages)
			}
			h.assertWorkspaceClean(t)
		})
	}
}

func TestRunSelectsRequestedTrack(t *testing.T) {
	h := newHarness(t)
	h.mkv.tracks = []container.Track{
		{ID: 2, Codec: "SubStationAlpha", Language: "eng"},
		{ID: 5, Codec: "SubStationAlpha", Language: "jpn"},
	}
	res, err := h.runner.Process(context.Background(), Request{Input: h.input, TrackID: intPtr(5)})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if h.mkv.extracted != 5 || res.Track.Language != "jpn" {
		t.Errorf("expected track 5, got %d (%+v)", h.mkv.extracted, res.Track)
	}
}

func TestRunConvertsNonASS(t *testing.T) {
	h := newHarness(t)
	h.mkv.content = srtTrack

	res, err := h.runner.Process(context.Background(), Request{Input: h.input})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if h.converter.calls != 1 || !res.Converted {
		t.Errorf("expected one conversion, got %d", h.converter.calls)
	}
	if filepath.Base(h.mkv.merged.Subtitle) != "converted.ass" {
		t.Errorf("expected converted subtitle merged, got %s", h.mkv.merged.Subtitle)
	}
}

func TestRunInlineStyle(t *testing.T) {
	h := newHarness(t)
	cfg := style.Config{style.KeyFontName: "Roboto", style.KeyFontSize: "32"}

	res, err := h.runner.Process(context.Background(), Request{Input: h.input, StyleConfig: cfg})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Styled != StyleConfig {
		t.Errorf("expected config styling, got %s", res.Styled)
	}
	if !strings.Contains(h.mkv.mergedSub, style.BuildLine(cfg, "Default")) {
		t.Errorf("expected styled Default line in merged subtitle:\n%s", h.mkv.mergedSub)
	}
	if !strings.Contains(h.mkv.mergedSub, "Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Hello") {
		t.Error("expected events untouched")
	}
}

func TestRunFileStyleTakesPrecedence(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "style.json")
	if err := os.WriteFile(path, []byte(`{"subtitle_style": {"font_name": "FromFile"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.runner.Process(context.Background(), Request{
		Input:           h.input,
		StyleConfig:     style.Config{style.KeyFontName: "Inline"},
		StyleConfigFile: path,
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !strings.Contains(h.mkv.mergedSub, "Style: Default,FromFile,20,") {
		t.Errorf("expected file style applied:\n%s", h.mkv.mergedSub)
	}
}

func TestRunStyleFileWithoutSectionSkipsStyling(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "style.json")
	if err := os.WriteFile(path, []byte(`{"theme": "dark"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := h.runner.Process(context.Background(), Request{Input: h.input, StyleConfigFile: path})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Styled != StyleNone || h.mkv.mergedSub != assTrack {
		t.Error("expected subtitle to pass through unstyled")
	}
}

func TestRunManualStylingWaitsForConfirmation(t *testing.T) {
	var prompts []string
	h := newHarness(t, func(o *Options) {
		o.Confirmer = editor.ConfirmFunc(func(_ context.Context, prompt string) error {
			prompts = append(prompts, prompt)
			return nil
		})
	})
	h.editor.available = true

	res, err := h.runner.Process(context.Background(), Request{
		Input:         h.input,
		ManualStyling: true,
		StyleConfig:   style.Config{style.KeyFontName: "Ignored"},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Styled != StyleManual {
		t.Errorf("expected manual styling, got %s", res.Styled)
	}
	if len(h.editor.opened) != 1 || h.editor.waited {
		t.Errorf("expected one detached open, got %v waited=%v", h.editor.opened, h.editor.waited)
	}
	if len(prompts) != 1 || prompts[0] != ConfirmPrompt {
		t.Errorf("expected confirmation prompt, got %v", prompts)
	}
	if h.mkv.mergedSub != assTrack {
		t.Error("expected config styling skipped in manual mode")
	}
}

func TestRunManualStylingFailsOnClosedInput(t *testing.T) {
	h := newHarness(t, func(o *Options) {
		o.Confirmer = editor.NewPromptConfirmer(strings.NewReader(""), nil)
	})
	h.editor.available = true

	_, err := h.runner.Process(context.Background(), Request{Input: h.input, ManualStyling: true})
	if !errors.Is(err, editor.ErrInputClosed) {
		t.Fatalf("expected ErrInputClosed, got %v", err)
	}
	for _, call := range h.mkv.calls {
		if call == "merge" {
			t.Fatal("expected no merge without confirmation")
		}
	}
	for _, s := range h.stages {
		if s == StageMerge {
			t.Fatalf("expected run to stop at style, got %v", h.stages)
		}
	}
	h.assertWorkspaceClean(t)
}

func TestRunManualStylingWithoutConfirmerBlocksOnEditor(t *testing.T) {
	h := newHarness(t)
	h.editor.available = true

	if _, err := h.runner.Process(context.Background(), Request{Input: h.input, ManualStyling: true}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !h.editor.waited {
		t.Error("expected blocking open")
	}
}

func TestRunManualStylingFallsBackWhenEditorMissing(t *testing.T) {
	h := newHarness(t)
	cfg := style.Config{style.KeyFontName: "Roboto"}

	res, err := h.runner.Process(context.Background(), Request{Input: h.input, ManualStyling: true, StyleConfig: cfg})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Styled != StyleConfig || len(h.editor.opened) != 0 {
		t.Errorf("expected config styling without editor, got %s", res.Styled)
	}
}

func TestRunReplaceOriginal(t *testing.T) {
	h := newHarness(t)

	res, err := h.runner.Process(context.Background(), Request{Input: h.input, ReplaceOriginal: true})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.Output != h.input {
		t.Errorf("expected output at input path, got %s", res.Output)
	}
	data, err := os.ReadFile(h.input)
	if err != nil || string(data) != "muxed" {
		t.Errorf("expected muxed content at input path, got %q (%v)", data, err)
	}
	backup, err := os.ReadFile(filepath.Join(h.dir, "_backups", "ep01_original.mkv"))
	if err != nil || string(backup) != "video" {
		t.Errorf("expected original backed up, got %q (%v)", backup, err)
	}
	if res.Backup == "" {
		t.Error("expected backup path in result")
	}
}

func TestRunRecoversPanic(t *testing.T) {
	h := newHarness(t)
	h.mkv.tracks = nil
	reg, err := container.NewRegistry(container.Capability{
		Name:           "boom",
		Extensions:     []string{"mkv"},
		ToolsAvailable: func(context.Context) bool { return true },
		Analyze: func(context.Context, string) ([]container.Track, error) {
			panic("analyzer crashed")
		},
		Extract: func(context.Context, string, int, string) error { return nil },
		Merge:   func(context.Context, container.MergeRequest) error { return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(Options{Registry: reg, TempDir: filepath.Join(h.dir, "tmp")})
	if err != nil {
		t.Fatal(err)
	}

	if r.Run(context.Background(), Request{Input: h.input}) {
		t.Fatal("expected panic to collapse to failure")
	}
	h.assertWorkspaceClean(t)
}

func TestNewRequiresRegistry(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without registry")
	}
}
