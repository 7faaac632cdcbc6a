package collector

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gbzip/gbzip/internal/config"
)

// PatternFilter applies --include/--exclude glob filtering on top of the
// ignore engine's decision. It is a deliberately simpler sibling of the
// ignore engine: plain doublestar globs evaluated against the archive
// path, with no scope chaining or hierarchical loading.
//
// Rules: exclude wins over include; an empty include list means
// pass-through (everything not excluded is kept).
type PatternFilter struct {
	includes []string
	excludes []string
	logger   *slog.Logger
}

// NewPatternFilter builds a PatternFilter from the resolved --include and
// --exclude flag values.
func NewPatternFilter(includes, excludes []string) *PatternFilter {
	inc := make([]string, len(includes))
	copy(inc, includes)
	exc := make([]string, len(excludes))
	copy(exc, excludes)

	return &PatternFilter{
		includes: inc,
		excludes: exc,
		logger:   config.NewLogger("collector"),
	}
}

// HasFilters reports whether any include or exclude pattern was configured.
func (f *PatternFilter) HasFilters() bool {
	return len(f.includes) > 0 || len(f.excludes) > 0
}

// Matches reports whether archivePath should be kept.
func (f *PatternFilter) Matches(archivePath string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(archivePath), "./")
	if normalized == "" {
		return false
	}

	for _, pattern := range f.excludes {
		matched, err := doublestar.Match(pattern, normalized)
		if err != nil {
			f.logger.Debug("invalid exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			f.logger.Debug("path excluded by pattern", "path", normalized, "pattern", pattern)
			return false
		}
	}

	if len(f.includes) == 0 {
		return true
	}

	for _, pattern := range f.includes {
		matched, err := doublestar.Match(pattern, normalized)
		if err != nil {
			f.logger.Debug("invalid include pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}

	return false
}
