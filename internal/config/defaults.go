package config

// Defaults shared with the pipeline and batch runners.
const (
	DefaultOutputSuffix    = "_processed"
	DefaultBatchSuffix     = "_styled"
	DefaultBackupDirName   = "_backups"
	DefaultMergeLanguage   = "eng"
	DefaultMergeTrackName  = "Styled Subtitles"
	DefaultWorkspacePrefix = "mkv_subtitle_"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			MKVMerge:   "mkvmerge",
			MKVExtract: "mkvextract",
			MKVInfo:    "mkvinfo",
		},
		Output: Output{
			Suffix:        DefaultOutputSuffix,
			BatchSuffix:   DefaultBatchSuffix,
			BackupDirName: DefaultBackupDirName,
		},
		Merge: Merge{
			Language:  DefaultMergeLanguage,
			TrackName: DefaultMergeTrackName,
		},
		Workspace: Workspace{
			Prefix: DefaultWorkspacePrefix,
		},
	}
}
