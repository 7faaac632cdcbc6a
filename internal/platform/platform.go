// Package platform isolates the handful of OS-conditional calls the core
// packages need: hardware parallelism, the user's home directory, path
// canonicalization, and file stat. Every other package depends only on
// this abstraction rather than on runtime/os directly for these concerns.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// HardwareParallelism reports the number of logical CPUs available, used
// to size the Phase B worker pool before clamping.
func HardwareParallelism() int {
	return runtime.NumCPU()
}

// HomeDir returns the current user's home directory, or "" if it cannot
// be determined.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// Canonicalize resolves path to an absolute, symlink-free form. It does
// not require the path to exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path may not exist yet (e.g. an extraction target); fall back to
		// the absolute form without symlink resolution.
		return abs, nil
	}
	return resolved, nil
}

// Stat is the subset of os.FileInfo the core cares about, decoupled from
// the os package so it can be faked in tests without touching a real
// filesystem.
type Stat struct {
	Size    int64
	Mtime   time.Time
	IsDir   bool
	ModeStr string
}

// FileStat stats path and returns a platform.Stat.
func FileStat(path string) (Stat, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stat{}, err
	}
	return Stat{
		Size:    info.Size(),
		Mtime:   info.ModTime(),
		IsDir:   info.IsDir(),
		ModeStr: info.Mode().String(),
	}, nil
}
