package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	envConfigPath     = "SUBSTYLE_CONFIG"
	envMKVMerge       = "SUBSTYLE_MKVMERGE_PATH"
	envMKVExtract     = "SUBSTYLE_MKVEXTRACT_PATH"
	envMKVInfo        = "SUBSTYLE_MKVINFO_PATH"
	envFFmpeg         = "SUBSTYLE_FFMPEG_PATH"
	envFFmpegDownload = "SUBSTYLE_FFMPEG_DOWNLOAD"
	envAegisub        = "SUBSTYLE_AEGISUB_PATH"
	envStyleConfig    = "SUBSTYLE_STYLE_CONFIG"
	envTempDir        = "SUBSTYLE_TEMP_DIR"
	envMergeLanguage  = "SUBSTYLE_MERGE_LANGUAGE"
	envReplace        = "SUBSTYLE_REPLACE_ORIGINAL"
)

func (c *Config) applyEnv() {
	setString(&c.Tools.MKVMerge, envMKVMerge)
	setString(&c.Tools.MKVExtract, envMKVExtract)
	setString(&c.Tools.MKVInfo, envMKVInfo)
	setString(&c.Tools.FFmpeg, envFFmpeg)
	setBool(&c.Tools.FFmpegDownload, envFFmpegDownload)
	setString(&c.Tools.Aegisub, envAegisub)
	setString(&c.Style.ConfigFile, envStyleConfig)
	setString(&c.Workspace.TempDir, envTempDir)
	setString(&c.Merge.Language, envMergeLanguage)
	setBool(&c.Output.ReplaceOriginal, envReplace)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// unparseable values are ignored
func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		*dst = b
	}
}
