package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig is the schema of an on-disk .gbzip.toml / ~/.gbziprc.toml
// file. Every field is optional; a zero value means "not set by this
// layer" and the default or CLI-flag layer takes over.
type FileConfig struct {
	CompressionLevel *int    `toml:"compression_level"`
	LargeFileMiB     *int64  `toml:"large_file_mib"`
	ActivationMiB    *int64  `toml:"activation_mib"`
	MaxWorkers       *int    `toml:"max_workers"`
	IgnoreFile       *string `toml:"ignore_file"`
	OnConflict       *string `toml:"on_conflict"`
	JSONLogs         *bool   `toml:"json_logs"`
}

// FindConfigFile locates the nearest .gbzip.toml starting at dir, then
// falls back to ~/.gbziprc.toml. It returns "" if neither exists.
func FindConfigFile(dir string) string {
	local := filepath.Join(dir, ".gbzip.toml")
	if _, err := os.Stat(local); err == nil {
		return local
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	rc := filepath.Join(home, ".gbziprc.toml")
	if _, err := os.Stat(rc); err == nil {
		return rc
	}
	return ""
}

// LoadFileConfig parses a TOML config file. Unknown keys are logged as
// warnings rather than treated as errors, matching the teacher's
// tolerant config-file loading.
func LoadFileConfig(path string) (*FileConfig, error) {
	var fc FileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, err
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("unknown config key ignored", "file", path, "key", key.String())
	}
	return &fc, nil
}
