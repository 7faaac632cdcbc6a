// Package collector implements C3: recursively walking one or more
// collection roots, applying the ignore engine and any --include/--exclude
// filters, and emitting a deterministic, ordered list of FileEntry values.
package collector

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/ignore"
	"github.com/gbzip/gbzip/internal/pathmodel"
	"github.com/gbzip/gbzip/internal/pipeline"
)

// Options configures a single Collect call.
type Options struct {
	// Roots are the collection roots, in the order the caller supplied
	// them. A root may be a regular file or a directory.
	Roots []string

	// Ignore is the (already initial-loaded) ignore context that governs
	// which candidates are skipped.
	Ignore *ignore.Context

	// Filter applies optional --include/--exclude globs on top of the
	// ignore engine's decision. May be nil.
	Filter *PatternFilter

	// JunkPaths stores files by basename only and omits directory entries,
	// mirroring zip's -j.
	JunkPaths bool

	// NoRecurse stops descent into subdirectories of each root entirely,
	// mirroring zip's -r turned off. The zero value recurses, matching -r's
	// documented default-on behavior.
	NoRecurse bool

	// ArchiveAbsPath, if non-empty, is excluded implicitly per invariant
	// I5: the system never reads what it is writing.
	ArchiveAbsPath string
}

// Collect walks every root in Options.Roots and returns the ordered
// FileEntry list plus the accumulated summary counters that drive the
// Phase B activation decision.
func Collect(opts Options) ([]pipeline.FileEntry, pipeline.CollectSummary, error) {
	c := &collectRun{
		opts:     opts,
		resolver: newSymlinkResolver(),
		logger:   config.NewLogger("collector"),
	}

	var entries []pipeline.FileEntry
	var summary pipeline.CollectSummary

	for _, root := range opts.Roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, pipeline.CollectSummary{}, pipeline.NewInvalidArgsError("resolving root", err)
		}

		info, err := os.Stat(absRoot)
		if err != nil {
			return nil, pipeline.CollectSummary{}, pipeline.NewFileNotFoundError("stat collection root "+root, err)
		}

		if !info.IsDir() {
			fe, ok := c.fileEntry(absRoot, filepath.Base(absRoot), info.Size(), info.ModTime().Unix())
			if ok {
				entries = append(entries, fe)
				accumulate(&summary, fe)
			}
			continue
		}

		dirEntries, err := c.walkDir(absRoot, absRoot)
		if err != nil {
			return nil, pipeline.CollectSummary{}, err
		}
		for _, fe := range dirEntries {
			accumulate(&summary, fe)
		}
		entries = append(entries, dirEntries...)
	}

	return entries, summary, nil
}

type collectRun struct {
	opts     Options
	resolver *symlinkResolver
	seen     map[string]bool // visited absolute paths, enforcing invariant I4
	logger   *slog.Logger
}

// walkDir walks one directory root and returns its FileEntry list in
// collection order (a directory entry immediately followed by its
// children, lexicographic within each directory level).
func (c *collectRun) walkDir(base, root string) ([]pipeline.FileEntry, error) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}

	var out []pipeline.FileEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			c.logger.Debug("walk error", "path", path, "error", walkErr)
			return nil
		}

		if c.opts.ArchiveAbsPath != "" && path == c.opts.ArchiveAbsPath {
			return nil
		}

		if c.seen[path] {
			return nil
		}
		c.seen[path] = true

		isRootItself := path == root

		if d.IsDir() {
			if err := c.opts.Ignore.LoadNested(path); err != nil {
				c.logger.Debug("load nested ignore failed", "dir", path, "error", err)
			}
			if !isRootItself && c.opts.Ignore.IsIgnored(path) {
				c.logger.Debug("directory ignored, pruning subtree", "path", path)
				return fs.SkipDir
			}
			if !isRootItself && c.opts.NoRecurse {
				c.logger.Debug("recursion disabled, pruning subtree", "path", path)
				return fs.SkipDir
			}
			if !isRootItself && !c.opts.JunkPaths {
				rel, ok := pathmodel.ToArchivePath(path, base)
				if ok && rel != "" {
					out = append(out, pipeline.FileEntry{
						SourcePath:  path,
						ArchivePath: rel + "/",
						IsDirectory: true,
					})
				}
			}
			return nil
		}

		parent := filepath.Dir(path)
		if err := c.opts.Ignore.LoadNested(parent); err != nil {
			c.logger.Debug("load nested ignore failed", "dir", parent, "error", err)
		}

		sourcePath := path
		if d.Type()&os.ModeSymlink != 0 {
			resolved, isLoop, err := c.resolver.resolve(path)
			if err != nil {
				c.logger.Debug("symlink error, skipping", "path", path, "error", err)
				return nil
			}
			if isLoop {
				c.logger.Debug("symlink loop, skipping", "path", path)
				return nil
			}
			c.resolver.markVisited(resolved)
			targetInfo, err := os.Stat(resolved)
			if err != nil {
				c.logger.Debug("symlink target stat failed, skipping", "path", path, "error", err)
				return nil
			}
			if targetInfo.IsDir() {
				// Non-goal: symbolic-link/special-file preservation. Symlinked
				// directories are not followed.
				return nil
			}
			sourcePath = resolved
		}

		if c.opts.Ignore.IsIgnored(path) {
			c.logger.Debug("file ignored", "path", path)
			return nil
		}

		var archivePath string
		if c.opts.JunkPaths {
			archivePath = filepath.Base(path)
		} else {
			rel, ok := pathmodel.ToArchivePath(path, base)
			if !ok {
				return nil
			}
			archivePath = rel
		}

		if c.opts.Filter != nil && c.opts.Filter.HasFilters() && !c.opts.Filter.Matches(archivePath) {
			c.logger.Debug("excluded by pattern filter", "path", archivePath)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			c.logger.Debug("stat failed", "path", path, "error", err)
			return nil
		}

		// Re-stat the resolved target so size/mtime reflect the real file,
		// not the symlink itself.
		if sourcePath != path {
			if targetInfo, err := os.Stat(sourcePath); err == nil {
				info = targetInfo
			}
		}

		fe := pipeline.FileEntry{
			SourcePath:  sourcePath,
			ArchivePath: archivePath,
			Size:        info.Size(),
			Mtime:       info.ModTime().Unix(),
		}
		out = append(out, fe)
		return nil
	})

	return out, err
}

// fileEntry builds a single-file root entry, applying the ignore context
// and pattern filter the same way a walked candidate would.
func (c *collectRun) fileEntry(absPath, archivePath string, size, mtime int64) (pipeline.FileEntry, bool) {
	if c.opts.ArchiveAbsPath != "" && absPath == c.opts.ArchiveAbsPath {
		return pipeline.FileEntry{}, false
	}
	if c.opts.Ignore.IsIgnored(absPath) {
		return pipeline.FileEntry{}, false
	}
	if c.opts.Filter != nil && c.opts.Filter.HasFilters() && !c.opts.Filter.Matches(archivePath) {
		return pipeline.FileEntry{}, false
	}
	return pipeline.FileEntry{
		SourcePath:  absPath,
		ArchivePath: archivePath,
		Size:        size,
		Mtime:       mtime,
	}, true
}

// Collection order is already lexicographic per directory level because
// filepath.WalkDir's underlying os.ReadDir call sorts entries by name.

func accumulate(s *pipeline.CollectSummary, fe pipeline.FileEntry) {
	if fe.IsDirectory {
		return
	}
	s.TotalFiles++
	s.TotalBytes += fe.Size
	if fe.Size >= config.DefaultLargeFileThreshold {
		s.LargeFileCount++
		s.LargeFileBytes += fe.Size
	}
}
