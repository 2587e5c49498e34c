package cli

import (
	"github.com/mgpai22/substyle/internal/config"
	"github.com/mgpai22/substyle/internal/container"
	"github.com/mgpai22/substyle/internal/container/mkv"
	"github.com/mgpai22/substyle/internal/editor"
	"github.com/mgpai22/substyle/internal/ffmpeg"
	"github.com/mgpai22/substyle/internal/logging"
	"github.com/mgpai22/substyle/internal/pipeline"
	"github.com/mgpai22/substyle/internal/subtitle"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg       config.Config
	logger    *logging.Logger
	mkv       *mkv.Processor
	registry  *container.Registry
	ffmpeg    *ffmpeg.Resolver
	converter *subtitle.Converter
	editor    *editor.Aegisub
}

func newApp(cfg config.Config, logger *logging.Logger) (*app, error) {
	logger = logging.OrNop(logger)
	proc := mkv.New(mkv.Tools{
		MKVMerge:   cfg.Tools.MKVMerge,
		MKVExtract: cfg.Tools.MKVExtract,
		MKVInfo:    cfg.Tools.MKVInfo,
	}, logger)
	registry, err := container.NewRegistry(proc.Capability())
	if err != nil {
		return nil, err
	}
	resolver := ffmpeg.NewResolver(cfg.Tools.FFmpeg, cfg.Tools.FFmpegDownload, logger)
	return &app{
		cfg:       cfg,
		logger:    logger,
		mkv:       proc,
		registry:  registry,
		ffmpeg:    resolver,
		converter: subtitle.NewConverter(resolver.Path, logger),
		editor:    editor.New(cfg.Tools.Aegisub, logger),
	}, nil
}

type runnerOptions struct {
	confirmer editor.Confirmer
	observer  func(pipeline.Stage)
	logger    *logging.Logger
}

func (a *app) runner(opts runnerOptions) (*pipeline.Runner, error) {
	l := opts.logger
	if l == nil {
		l = a.logger
	}
	return pipeline.New(pipeline.Options{
		Registry:       a.registry,
		Converter:      a.converter,
		Editor:         a.editor,
		Confirmer:      opts.confirmer,
		TempDir:        a.cfg.Workspace.TempDir,
		TempPrefix:     a.cfg.Workspace.Prefix,
		OutputSuffix:   a.cfg.Output.Suffix,
		BackupDirName:  a.cfg.Output.BackupDirName,
		MergeLanguage:  a.cfg.Merge.Language,
		MergeTrackName: a.cfg.Merge.TrackName,
		Logger:         l,
		Observer:       opts.observer,
	})
}
