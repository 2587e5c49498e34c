package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mgpai22/substyle/internal/config"
	"github.com/mgpai22/substyle/internal/container"
	"github.com/mgpai22/substyle/internal/logging"
	"github.com/mgpai22/substyle/internal/style"
	"github.com/mgpai22/substyle/internal/subtitle"
	"github.com/mgpai22/substyle/internal/workspace"
)

// Runner executes pipeline runs. Runs on one Runner must not overlap.
type Runner struct {
	opts   Options
	logger *logging.Logger
}

func New(opts Options) (*Runner, error) {
	if opts.Registry == nil {
		return nil, errors.New("pipeline: registry is required")
	}
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = config.DefaultOutputSuffix
	}
	if opts.MergeLanguage == "" {
		opts.MergeLanguage = config.DefaultMergeLanguage
	}
	if opts.MergeTrackName == "" {
		opts.MergeTrackName = config.DefaultMergeTrackName
	}
	if opts.BackupDirName == "" {
		opts.BackupDirName = workspace.DefaultBackupDir
	}
	return &Runner{
		opts:   opts,
		logger: logging.OrNop(opts.Logger).Named("pipeline"),
	}, nil
}

// Run processes req and reports success. Failures, panics included, are
// logged and collapse to false.
func (r *Runner) Run(ctx context.Context, req Request) bool {
	_, err := r.Process(ctx, req)
	return err == nil
}

// Process is Run with the result and failure cause.
func (r *Runner) Process(ctx context.Context, req Request) (res Result, err error) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID, "input", filepath.Base(req.Input))
	ws := workspace.NewManager(r.opts.TempDir, r.opts.TempPrefix, logger)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("processing failed: unexpected panic: %v", rec)
		}
		r.observe(StageCleanup)
		ws.Cleanup()
		if err != nil {
			logger.Errorw("processing failed", "error", err)
		}
	}()

	res, err = r.process(ctx, req, ws, logger)
	res.RunID = runID
	if err == nil {
		logger.Infow("successfully processed video", "output", res.Output)
	}
	return res, err
}

func (r *Runner) observe(s Stage) {
	if r.opts.Observer != nil {
		r.opts.Observer(s)
	}
}

func (r *Runner) process(ctx context.Context, req Request, ws *workspace.Manager, logger *logging.Logger) (Result, error) {
	var res Result

	r.observe(StageValidate)
	if !workspace.IsRegularFile(req.Input) {
		return res, fmt.Errorf("%w: %s", ErrInputNotFound, req.Input)
	}

	r.observe(StageToolCheck)
	if !r.opts.Registry.AnyToolsAvailable(ctx) {
		return res, ErrNoTools
	}

	r.observe(StageFormatCheck)
	capability, err := r.opts.Registry.Resolve(req.Input)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	r.observe(StageSetup)
	if _, err := ws.Create(); err != nil {
		return res, err
	}
	output := req.Output
	if output == "" {
		output = workspace.OutputPath(req.Input, r.opts.OutputSuffix)
	}
	res.Output = output

	r.observe(StageAnalyze)
	tracks, err := capability.Analyze(ctx, req.Input)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	if len(tracks) == 0 {
		return res, ErrNoSubtitleTracks
	}
	for _, t := range tracks {
		logger.Debugw("subtitle track", "track", t.ID, "codec", t.Codec, "language", t.Language, "name", t.Name)
	}

	r.observe(StageTrackSelect)
	track, err := selectTrack(tracks, req.TrackID)
	if err != nil {
		return res, err
	}
	if req.TrackID == nil {
		logger.Infow("auto-selected track", "track", track.ID)
	}
	res.Track = track

	r.observe(StageExtract)
	subPath, err := ws.Path(fmt.Sprintf("extracted_%d.ass", track.ID))
	if err != nil {
		return res, err
	}
	if err := capability.Extract(ctx, req.Input, track.ID, subPath); err != nil {
		return res, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	if err := subtitle.Validate(subPath); err != nil {
		return res, fmt.Errorf("%w: extracted subtitle: %v", ErrToolFailed, err)
	}

	r.observe(StageConvert)
	format, err := subtitle.DetectFormat(subPath)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}
	if format != subtitle.FormatASS {
		if r.opts.Converter == nil {
			return res, fmt.Errorf("%w: no converter for %s subtitles", ErrToolFailed, format)
		}
		converted, err := ws.Path("converted.ass")
		if err != nil {
			return res, err
		}
		logger.Infow("converting subtitle", "format", format)
		if err := r.opts.Converter.ToASS(ctx, subPath, converted); err != nil {
			return res, fmt.Errorf("%w: %v", ErrToolFailed, err)
		}
		if err := subtitle.Validate(converted); err != nil {
			return res, fmt.Errorf("%w: converted subtitle: %v", ErrToolFailed, err)
		}
		subPath = converted
		res.Converted = true
	}

	r.observe(StageStyle)
	mode, err := r.style(ctx, req, subPath, logger)
	if err != nil {
		return res, err
	}
	res.Styled = mode

	r.observe(StageMerge)
	merge := container.MergeRequest{
		Input:     req.Input,
		Subtitle:  subPath,
		Output:    output,
		Language:  r.opts.MergeLanguage,
		TrackName: r.opts.MergeTrackName,
	}
	if err := capability.Merge(ctx, merge); err != nil {
		return res, fmt.Errorf("%w: %v", ErrToolFailed, err)
	}

	if req.ReplaceOriginal {
		r.observe(StageReplace)
		backup, err := workspace.BackupAndReplace(ctx, req.Input, output, r.opts.BackupDirName, logger)
		if err != nil {
			return res, err
		}
		res.Backup = backup
		res.Output = req.Input
	}

	return res, nil
}

func selectTrack(tracks []container.Track, id *int) (container.Track, error) {
	if id == nil {
		return tracks[0], nil
	}
	for _, t := range tracks {
		if t.ID == *id {
			return t, nil
		}
	}
	return container.Track{}, fmt.Errorf("%w: %d", ErrTrackNotFound, *id)
}

// style resolves the style config first so a broken file fails the run even
// when the editor takes over.
func (r *Runner) style(ctx context.Context, req Request, subPath string, logger *logging.Logger) (StyleMode, error) {
	cfg, err := resolveStyle(req, logger)
	if err != nil {
		return StyleNone, err
	}

	if req.ManualStyling && r.opts.Editor != nil && r.opts.Editor.Available() {
		logger.Infow("opening aegisub for manual styling")
		if r.opts.Confirmer == nil {
			if err := r.opts.Editor.Open(ctx, subPath, true); err != nil {
				return StyleNone, fmt.Errorf("%w: %v", ErrToolFailed, err)
			}
			return StyleManual, nil
		}
		if err := r.opts.Editor.Open(ctx, subPath, false); err != nil {
			return StyleNone, fmt.Errorf("%w: %v", ErrToolFailed, err)
		}
		if err := r.opts.Confirmer.Confirm(ctx, ConfirmPrompt); err != nil {
			return StyleNone, fmt.Errorf("manual styling not confirmed: %w", err)
		}
		return StyleManual, nil
	}

	if len(cfg) == 0 {
		logger.Debugw("no style configuration, subtitle passes through unstyled")
		return StyleNone, nil
	}

	data, err := os.ReadFile(subPath)
	if err != nil {
		return StyleNone, fmt.Errorf("%w: %v", ErrStyleConfig, err)
	}
	patched := style.Patch(string(data), cfg)
	if err := os.WriteFile(subPath, []byte(patched.Text), 0o644); err != nil {
		return StyleNone, fmt.Errorf("%w: %v", ErrStyleConfig, err)
	}
	switch {
	case patched.Replaced:
		logger.Infow("replaced Default style with custom configuration")
	case patched.Inserted:
		logger.Infow("added new Default style with custom configuration")
	default:
		logger.Warnw("no [V4+ Styles] section, subtitle left unstyled")
	}
	return StyleConfig, nil
}

// a file config takes precedence over inline overrides
func resolveStyle(req Request, logger *logging.Logger) (style.Config, error) {
	if req.StyleConfigFile == "" {
		return req.StyleConfig, nil
	}
	cfg, err := style.LoadFile(req.StyleConfigFile)
	if errors.Is(err, style.ErrNoStyleSection) {
		logger.Warnw("no 'subtitle_style' section found", "config", req.StyleConfigFile)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleConfig, err)
	}
	logger.Infow("loaded style configuration", "config", req.StyleConfigFile, "parameters", len(cfg))
	if unknown := cfg.Unknown(); len(unknown) > 0 {
		logger.Debugw("ignoring unknown style keys", "keys", unknown)
	}
	return cfg, nil
}
