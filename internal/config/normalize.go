package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Style.ConfigFile, err = expandPath(c.Style.ConfigFile); err != nil {
		return fmt.Errorf("style.config_file: %w", err)
	}
	if c.Workspace.TempDir, err = expandPath(c.Workspace.TempDir); err != nil {
		return fmt.Errorf("workspace.temp_dir: %w", err)
	}
	if c.Tools.Aegisub, err = expandPath(c.Tools.Aegisub); err != nil {
		return fmt.Errorf("tools.aegisub: %w", err)
	}
	if c.Tools.FFmpeg, err = expandPath(c.Tools.FFmpeg); err != nil {
		return fmt.Errorf("tools.ffmpeg: %w", err)
	}

	if strings.TrimSpace(c.Tools.MKVMerge) == "" {
		c.Tools.MKVMerge = "mkvmerge"
	}
	if strings.TrimSpace(c.Tools.MKVExtract) == "" {
		c.Tools.MKVExtract = "mkvextract"
	}
	if strings.TrimSpace(c.Tools.MKVInfo) == "" {
		c.Tools.MKVInfo = "mkvinfo"
	}
	if strings.TrimSpace(c.Workspace.Prefix) == "" {
		c.Workspace.Prefix = DefaultWorkspacePrefix
	}
	if strings.TrimSpace(c.Merge.TrackName) == "" {
		c.Merge.TrackName = DefaultMergeTrackName
	}
	c.Merge.Language = strings.ToLower(strings.TrimSpace(c.Merge.Language))
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
