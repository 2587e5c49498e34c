package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Tools holds the external binaries the pipeline shells out to. Empty
// values fall back to a PATH lookup of the conventional name.
type Tools struct {
	MKVMerge       string `toml:"mkvmerge"`
	MKVExtract     string `toml:"mkvextract"`
	MKVInfo        string `toml:"mkvinfo"`
	FFmpeg         string `toml:"ffmpeg"`
	FFmpegDownload bool   `toml:"ffmpeg_download"`
	Aegisub        string `toml:"aegisub"`
}

// Output controls where processed files land.
type Output struct {
	Suffix          string `toml:"suffix"`
	BatchSuffix     string `toml:"batch_suffix"`
	ReplaceOriginal bool   `toml:"replace_original"`
	BackupDirName   string `toml:"backup_dir_name"`
}

// Merge holds the track metadata written for the restyled subtitle.
type Merge struct {
	Language  string `toml:"language"`
	TrackName string `toml:"track_name"`
}

// Style points at the default JSON style document.
type Style struct {
	ConfigFile string `toml:"config_file"`
}

// Workspace controls per-run temporary directories.
type Workspace struct {
	TempDir string `toml:"temp_dir"`
	Prefix  string `toml:"prefix"`
}

// Config is the application configuration loaded from TOML and the environment.
type Config struct {
	Tools     Tools     `toml:"tools"`
	Output    Output    `toml:"output"`
	Merge     Merge     `toml:"merge"`
	Style     Style     `toml:"style"`
	Workspace Workspace `toml:"workspace"`
}

// DefaultPath returns $SUBSTYLE_CONFIG or ~/.config/substyle/config.toml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", "substyle.toml")
	}
	return filepath.Join(dir, "substyle", "config.toml")
}

// Load reads the TOML file at path on top of Default, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return Config{}, err
		}
		data, err := os.ReadFile(expanded)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", expanded, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", expanded, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration values the pipeline cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Output.Suffix) == "" {
		return errors.New("output.suffix must not be empty")
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return fmt.Errorf("output.suffix %q must not contain path separators", c.Output.Suffix)
	}
	if strings.TrimSpace(c.Output.BatchSuffix) == "" {
		return errors.New("output.batch_suffix must not be empty")
	}
	if strings.TrimSpace(c.Output.BackupDirName) == "" {
		return errors.New("output.backup_dir_name must not be empty")
	}
	if strings.TrimSpace(c.Merge.Language) == "" {
		return errors.New("merge.language must not be empty")
	}
	return nil
}

// SampleConfig returns a commented TOML document with every option.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample config to path, refusing to overwrite.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
