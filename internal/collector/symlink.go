package collector

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gbzip/gbzip/internal/config"
)

// symlinkResolver tracks visited real paths to detect symlink loops while
// the collector walks a tree. Not required to be concurrency-safe by the
// collector itself (which walks a single root sequentially), but guarded
// anyway since the same resolver instance can be shared across
// concurrently-walked roots.
type symlinkResolver struct {
	visited map[string]bool
	mu      sync.Mutex
	logger  *slog.Logger
}

func newSymlinkResolver() *symlinkResolver {
	return &symlinkResolver{
		visited: make(map[string]bool),
		logger:  config.NewLogger("collector"),
	}
}

// resolve resolves path through any symlinks and reports whether the
// result has already been visited. It does not mark the path visited;
// callers must call markVisited once they commit to processing it.
func (s *symlinkResolver) resolve(path string) (realPath string, isLoop bool, err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, fmt.Errorf("dangling symlink %s: %w", path, err)
		}
		return "", false, fmt.Errorf("resolving symlink %s: %w", path, err)
	}

	s.mu.Lock()
	loop := s.visited[resolved]
	s.mu.Unlock()

	if loop {
		s.logger.Debug("symlink loop detected", "path", path, "real_path", resolved)
		return resolved, true, nil
	}
	return resolved, false, nil
}

func (s *symlinkResolver) markVisited(realPath string) {
	s.mu.Lock()
	s.visited[realPath] = true
	s.mu.Unlock()
}

// isSymlink reports whether the file at path is a symbolic link, without
// following it.
func isSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("lstat %s: %w", path, err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}
