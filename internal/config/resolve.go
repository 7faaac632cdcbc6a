package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Resolved is the merged configuration produced by Resolve, which layers
// compiled-in defaults, an optional TOML file, and CLI flags, each layer
// overriding the last. The commands in internal/cli do not call Resolve;
// they read FlagValues directly, so config-file values do not reach them.
type Resolved struct {
	CompressionLevel     int
	LargeFileThreshold   int64
	ActivationThreshold  int64
	MaxWorkers           int
	IgnoreFile           string
	OnConflict           string
	JSONLogs             bool
	Includes             []string
	Excludes             []string
	MaxExtractFiles      int
	MaxExtractSize       int64
	MaxCompressionRatio  int
	Force                bool
	Verbose              bool
	Quiet                bool
	JunkPaths            bool
}

// Resolve merges the three configuration layers with koanf, lowest
// precedence first: compiled-in defaults, an optional file layer, then CLI
// flags. This mirrors the teacher's resolver.go layered-merge shape scaled
// to gbzip's flat schema.
func Resolve(fc *FileConfig, fv *FlagValues) (*Resolved, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"compression_level": DefaultCompressionLevel,
		"large_file_mib":    DefaultLargeFileThreshold >> 20,
		"activation_mib":    DefaultParallelActivationThreshold >> 20,
		"max_workers":       MaxWorkers,
		"ignore_file":       "",
		"on_conflict":       "overwrite",
		"json_logs":         false,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	if fc != nil {
		layer := map[string]interface{}{}
		if fc.CompressionLevel != nil {
			layer["compression_level"] = *fc.CompressionLevel
		}
		if fc.LargeFileMiB != nil {
			layer["large_file_mib"] = *fc.LargeFileMiB
		}
		if fc.ActivationMiB != nil {
			layer["activation_mib"] = *fc.ActivationMiB
		}
		if fc.MaxWorkers != nil {
			layer["max_workers"] = *fc.MaxWorkers
		}
		if fc.IgnoreFile != nil {
			layer["ignore_file"] = *fc.IgnoreFile
		}
		if fc.OnConflict != nil {
			layer["on_conflict"] = *fc.OnConflict
		}
		if fc.JSONLogs != nil {
			layer["json_logs"] = *fc.JSONLogs
		}
		if len(layer) > 0 {
			if err := k.Load(confmap.Provider(layer, "."), nil); err != nil {
				return nil, err
			}
		}
	}

	if fv != nil {
		layer := map[string]interface{}{
			"compression_level": fv.CompressionLevel,
			"on_conflict":       fv.OnConflict,
			"json_logs":         fv.JSONLogs,
		}
		if fv.IgnoreFile != "" {
			layer["ignore_file"] = fv.IgnoreFile
		}
		if err := k.Load(confmap.Provider(layer, "."), nil); err != nil {
			return nil, err
		}
	}

	r := &Resolved{
		CompressionLevel:    k.Int("compression_level"),
		LargeFileThreshold:  k.Int64("large_file_mib") << 20,
		ActivationThreshold: k.Int64("activation_mib") << 20,
		MaxWorkers:          ClampWorkers(k.Int("max_workers")),
		IgnoreFile:          k.String("ignore_file"),
		OnConflict:          k.String("on_conflict"),
		JSONLogs:            k.Bool("json_logs"),
	}

	if fv != nil {
		r.Includes = fv.Includes
		r.Excludes = fv.Excludes
		r.MaxExtractFiles = fv.MaxExtractFiles
		r.MaxExtractSize = fv.MaxExtractSize
		r.MaxCompressionRatio = fv.MaxCompressionRatio
		r.Force = fv.Force
		r.Verbose = fv.Verbose
		r.Quiet = fv.Quiet
		r.JunkPaths = fv.JunkPaths
	} else {
		r.MaxExtractFiles = DefaultMaxExtractFiles
		r.MaxExtractSize = DefaultMaxExtractSize
		r.MaxCompressionRatio = DefaultMaxCompressionRatio
	}

	return r, nil
}
