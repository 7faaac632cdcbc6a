package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gbzip/gbzip/internal/config"
	"github.com/gbzip/gbzip/internal/platform"
)

// Context is an ordered sequence of Patterns plus the set of already-loaded
// absolute .zipignore paths (for de-duplication) and the collection's
// base directory. Capacity limits (config.MaxIgnorePatterns,
// config.MaxIgnoreFiles) are enforced on load; once hit, further loads are
// silently dropped and a diagnostic is logged.
type Context struct {
	Patterns []Pattern
	BaseDir  string

	loadedFiles map[string]bool
	logger      interface {
		Warn(msg string, args ...any)
		Debug(msg string, args ...any)
	}
}

// NewContext creates an empty Context scoped to baseDir, which should
// already be an absolute path.
func NewContext(baseDir string) *Context {
	return &Context{
		BaseDir:     baseDir,
		loadedFiles: make(map[string]bool),
		logger:      config.NewLogger("ignore"),
	}
}

// LoadInitial performs the initial load described in section 4.2: if
// explicitFile is non-empty, load only that file (hierarchical loading is
// disabled); otherwise load ~/.zipignore then <base_dir>/.zipignore, both
// scoped to BaseDir.
func (c *Context) LoadInitial(explicitFile string) error {
	if explicitFile != "" {
		if fileExists(explicitFile) {
			return c.loadFile(explicitFile, c.BaseDir)
		}
		return nil
	}

	if home := platform.HomeDir(); home != "" {
		homeFile := filepath.Join(home, config.ZipignoreFilename)
		if fileExists(homeFile) {
			if err := c.loadFile(homeFile, c.BaseDir); err != nil {
				return err
			}
		}
	}

	localFile := filepath.Join(c.BaseDir, config.ZipignoreFilename)
	if fileExists(localFile) {
		return c.loadFile(localFile, c.BaseDir)
	}
	return nil
}

// LoadNested loads dir/.zipignore scoped to dir, idempotently: a file
// already present in the de-duplication set is skipped silently. Called
// by the collector as it enters each directory.
func (c *Context) LoadNested(dir string) error {
	path := filepath.Join(dir, config.ZipignoreFilename)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	if c.loadedFiles[abs] {
		return nil
	}
	if !fileExists(abs) {
		return nil
	}
	return c.loadFile(abs, dir)
}

func (c *Context) loadFile(path, scopeDir string) error {
	if c.loadedFiles[path] {
		return nil
	}
	if len(c.loadedFiles) >= config.MaxIgnoreFiles {
		c.logger.Warn("ignore file cap reached, dropping load", "path", path, "cap", config.MaxIgnoreFiles)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil // not an error: the file simply doesn't exist or isn't readable
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(c.Patterns) >= config.MaxIgnorePatterns {
			c.logger.Warn("ignore pattern cap reached, dropping remaining lines", "path", path, "cap", config.MaxIgnorePatterns)
			break
		}
		line := scanner.Text()
		if IsCommentOrBlank(line) {
			continue
		}
		p, ok := ParsePattern(line, scopeDir)
		if !ok {
			continue
		}
		c.Patterns = append(c.Patterns, p)
	}

	c.loadedFiles[path] = true
	c.logger.Debug("loaded ignore file", "path", path, "scope", scopeDir, "patterns", len(c.Patterns))
	return nil
}

// IsIgnored returns the effective later-wins decision for path (an
// absolute filesystem path) per section 4.2's matching algorithm.
func (c *Context) IsIgnored(path string) bool {
	pathSlash := filepath.ToSlash(path)
	effective := false

	for _, pat := range c.Patterns {
		rel, ok := relativeToScope(pathSlash, filepath.ToSlash(pat.ScopeDir))
		if !ok || rel == "" {
			continue
		}
		if patternMatches(pat, rel) {
			effective = !pat.Negate
		}
	}
	return effective
}

// relativeToScope reports whether pathSlash lies lexically under
// scopeSlash and, if so, returns the path relative to that scope.
func relativeToScope(pathSlash, scopeSlash string) (rel string, ok bool) {
	if scopeSlash == "" {
		return pathSlash, true
	}
	if pathSlash == scopeSlash {
		return "", true
	}
	prefix := scopeSlash
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if strings.HasPrefix(pathSlash, prefix) {
		return pathSlash[len(prefix):], true
	}
	return "", false
}

// patternMatches implements the per-pattern match test of section 4.2.
func patternMatches(pat Pattern, relToScope string) bool {
	if pat.Anchored {
		return matchGlob(pat.Glob, relToScope)
	}

	if matchGlob(pat.Glob, relToScope) {
		return true
	}

	if !strings.Contains(pat.Glob, "/") {
		base := relToScope
		if idx := strings.LastIndex(relToScope, "/"); idx >= 0 {
			base = relToScope[idx+1:]
		}
		if matchGlob(pat.Glob, base) {
			return true
		}
	}

	if pat.DirOnly && strings.HasPrefix(relToScope, pat.Glob+"/") {
		return true
	}

	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
