package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envConfigPath, envMKVMerge, envMKVExtract, envMKVInfo, envFFmpeg,
		envFFmpegDownload, envAegisub, envStyleConfig, envTempDir,
		envMergeLanguage, envReplace,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Output.Suffix != "_processed" {
		t.Errorf("expected default suffix, got %q", cfg.Output.Suffix)
	}
	if cfg.Merge.Language != "eng" || cfg.Merge.TrackName != "Styled Subtitles" {
		t.Errorf("unexpected merge defaults: %+v", cfg.Merge)
	}
	if cfg.Tools.MKVMerge != "mkvmerge" {
		t.Errorf("expected mkvmerge default, got %q", cfg.Tools.MKVMerge)
	}
	if cfg.Tools.FFmpegDownload {
		t.Error("expected ffmpeg download to be opt-in")
	}
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)

	content := `
[tools]
mkvmerge = "/opt/mkvtoolnix/mkvmerge"
aegisub = "/opt/aegisub/aegisub"

[output]
suffix = "_restyled"
replace_original = true

[merge]
language = "JPN"
track_name = "Signs"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tools.MKVMerge != "/opt/mkvtoolnix/mkvmerge" {
		t.Errorf("unexpected mkvmerge: %q", cfg.Tools.MKVMerge)
	}
	if cfg.Tools.MKVExtract != "mkvextract" {
		t.Errorf("expected untouched default for mkvextract, got %q", cfg.Tools.MKVExtract)
	}
	if cfg.Output.Suffix != "_restyled" || !cfg.Output.ReplaceOriginal {
		t.Errorf("unexpected output section: %+v", cfg.Output)
	}
	if cfg.Merge.Language != "jpn" {
		t.Errorf("expected lowercased language, got %q", cfg.Merge.Language)
	}
	if cfg.Merge.TrackName != "Signs" {
		t.Errorf("unexpected track name %q", cfg.Merge.TrackName)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[output\nsuffix = "), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tools]\nffmpeg = \"/usr/bin/ffmpeg\"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(envFFmpeg, "/custom/ffmpeg")
	t.Setenv(envFFmpegDownload, "true")
	t.Setenv(envReplace, "not-a-bool")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Tools.FFmpeg != "/custom/ffmpeg" {
		t.Errorf("expected env ffmpeg path, got %q", cfg.Tools.FFmpeg)
	}
	if !cfg.Tools.FFmpegDownload {
		t.Error("expected download enabled by env")
	}
	if cfg.Output.ReplaceOriginal {
		t.Error("unparseable bool should leave default")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty suffix", func(c *Config) { c.Output.Suffix = " " }, "output.suffix"},
		{"separator in suffix", func(c *Config) { c.Output.Suffix = "a/b" }, "path separators"},
		{"empty batch suffix", func(c *Config) { c.Output.BatchSuffix = "" }, "batch_suffix"},
		{"empty backup dir", func(c *Config) { c.Output.BackupDirName = "" }, "backup_dir_name"},
		{"empty language", func(c *Config) { c.Merge.Language = "" }, "merge.language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/styles/anime.json")
	if err != nil {
		t.Fatalf("expandPath failed: %v", err)
	}
	if want := filepath.Join(home, "styles", "anime.json"); got != want {
		t.Errorf("expandPath = %q, want %q", got, want)
	}
	if got, _ := expandPath("relative/file.json"); got != "relative/file.json" {
		t.Errorf("relative path changed: %q", got)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read sample: %v", err)
	}
	if !strings.Contains(string(data), "[tools]") {
		t.Error("sample missing [tools] section")
	}
	if err := WriteSample(path); err == nil {
		t.Error("expected refusal to overwrite")
	}

	clearEnv(t)
	if _, err := Load(path); err != nil {
		t.Errorf("sample config should load cleanly: %v", err)
	}
}

func TestDefaultPathHonoursEnv(t *testing.T) {
	t.Setenv(envConfigPath, "/etc/substyle.toml")
	if got := DefaultPath(); got != "/etc/substyle.toml" {
		t.Errorf("DefaultPath = %q", got)
	}
}
