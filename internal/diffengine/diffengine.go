// Package diffengine implements C5: comparing an existing archive's
// central directory against the current state of a directory tree and
// applying the resulting change set in place.
package diffengine

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gbzip/gbzip/internal/collector"
	"github.com/gbzip/gbzip/internal/compress"
	"github.com/gbzip/gbzip/internal/ignore"
	"github.com/gbzip/gbzip/internal/pipeline"
	"github.com/gbzip/gbzip/internal/progress"
)

// SourceDirCommentPrefix tags the collection root inside the archive
// comment written by "gbzip create", read back by ReadIndex so "gbzip -u"
// and bare "gbzip diff <archive>" can recover an implicit target directory.
const SourceDirCommentPrefix = "gbzip-source-dir:"

// ReadIndex builds an ArchiveEntryIndex from an existing archive's central
// directory, skipping directory entries, per spec step 2. SourceDir
// recovers the collection root recorded in the archive comment at create
// time (§3 of the CLI expansion), falling back to the archive's own
// directory when the comment is empty or not a comment this tool wrote.
func ReadIndex(archivePath string) (pipeline.ArchiveEntryIndex, error) {
	idx := pipeline.ArchiveEntryIndex{
		Entries:   make(map[string]pipeline.ArchiveEntry),
		SourceDir: filepath.Dir(archivePath),
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return idx, pipeline.NewArchiveCorruptError("reading archive central directory", err)
	}
	defer r.Close()

	if dir, ok := strings.CutPrefix(r.Comment, SourceDirCommentPrefix); ok {
		idx.SourceDir = dir
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		idx.Entries[f.Name] = pipeline.ArchiveEntry{
			Name:  f.Name,
			Mtime: f.Modified.Unix(),
			Size:  int64(f.UncompressedSize64),
		}
	}
	return idx, nil
}

// Compute runs C3 on dir and outer-joins the result against archive, keyed
// on archive_path, producing the ChangeSet per spec §4.5 step 4. The mtime
// comparison is the documented strict-greater-than quirk: equal mtimes
// with changed content are not detected as Modified.
func Compute(archive pipeline.ArchiveEntryIndex, dir string, ignoreCtx *ignore.Context) (pipeline.ChangeSet, []pipeline.FileEntry, error) {
	current, _, err := collector.Collect(collector.Options{
		Roots:  []string{dir},
		Ignore: ignoreCtx,
	})
	if err != nil {
		return pipeline.ChangeSet{}, nil, err
	}

	currentByPath := make(map[string]pipeline.FileEntry, len(current))
	for _, e := range current {
		if e.IsDirectory {
			continue
		}
		currentByPath[e.ArchivePath] = e
	}

	var changes pipeline.ChangeSet

	for name, curr := range currentByPath {
		arch, existed := archive.Entries[name]
		if !existed {
			changes.Changes = append(changes.Changes, pipeline.Change{
				ArchivePath: name,
				Kind:        pipeline.Added,
				NewMtime:    curr.Mtime,
				NewSize:     curr.Size,
			})
			continue
		}
		if curr.Mtime > arch.Mtime || curr.Size != arch.Size {
			changes.Changes = append(changes.Changes, pipeline.Change{
				ArchivePath: name,
				Kind:        pipeline.Modified,
				OldMtime:    arch.Mtime,
				OldSize:     arch.Size,
				NewMtime:    curr.Mtime,
				NewSize:     curr.Size,
			})
		}
	}

	for name, arch := range archive.Entries {
		if _, stillPresent := currentByPath[name]; !stillPresent {
			changes.Changes = append(changes.Changes, pipeline.Change{
				ArchivePath: name,
				Kind:        pipeline.Deleted,
				OldMtime:    arch.Mtime,
				OldSize:     arch.Size,
			})
		}
	}

	return changes, current, nil
}

// Apply performs the ChangeSet against archivePath. Per spec §4.5 step 5,
// deletions and the old side of modifications are dropped by name, then
// additions and the new side of modifications are written from the
// current source files. The whole archive is rebuilt into a temp file and
// swapped into place only on full success, honoring §7's "discard, don't
// partially save" propagation policy.
func Apply(archivePath string, changes pipeline.ChangeSet, currentEntries []pipeline.FileEntry, compressionLevel int, reporter progress.Reporter) error {
	byPath := make(map[string]pipeline.FileEntry, len(currentEntries))
	for _, e := range currentEntries {
		byPath[e.ArchivePath] = e
	}

	removed := make(map[string]bool)
	var toWrite []pipeline.FileEntry
	for _, c := range changes.Changes {
		switch c.Kind {
		case pipeline.Deleted:
			removed[c.ArchivePath] = true
		case pipeline.Modified:
			removed[c.ArchivePath] = true
			if e, ok := byPath[c.ArchivePath]; ok {
				toWrite = append(toWrite, e)
			}
		case pipeline.Added:
			if e, ok := byPath[c.ArchivePath]; ok {
				toWrite = append(toWrite, e)
			}
		}
	}

	kept, cleanup, err := extractUnchangedToTemp(archivePath, removed)
	defer cleanup()
	if err != nil {
		return err
	}

	// changes never covers directories (Compute diffs files only), so a
	// subdirectory created since the archive was last built would
	// otherwise never make it into the rebuilt archive; carry forward
	// any directory present on disk but not already kept from the old
	// archive.
	keptDirs := make(map[string]bool, len(kept))
	for _, e := range kept {
		if e.IsDirectory {
			keptDirs[e.ArchivePath] = true
		}
	}
	for _, e := range currentEntries {
		if e.IsDirectory && !keptDirs[e.ArchivePath] {
			toWrite = append(toWrite, e)
		}
	}

	allEntries := append(kept, toWrite...)

	_, err = compress.Build(context.Background(), compress.Options{
		OutputPath:       archivePath,
		Entries:          allEntries,
		CompressionLevel: compressionLevel,
		Reporter:         reporter,
	})
	return err
}

// extractUnchangedToTemp spills every archive member not in removed to a
// temp file on disk so compress.Build can treat it like any other source
// file, keeping the rebuild logic single-path. Directory entries are kept
// without spilling any content, since compress.Build writes them from
// ArchivePath/Mtime alone. The returned cleanup func removes the temp
// files and must always be called.
func extractUnchangedToTemp(archivePath string, removed map[string]bool) ([]pipeline.FileEntry, func(), error) {
	var kept []pipeline.FileEntry
	cleanup := func() {
		for _, e := range kept {
			if e.SourcePath != "" {
				os.Remove(e.SourcePath)
			}
		}
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, cleanup, pipeline.NewArchiveCorruptError("opening archive for diff apply", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if removed[f.Name] {
			continue
		}

		if f.FileInfo().IsDir() {
			kept = append(kept, pipeline.FileEntry{
				ArchivePath: f.Name,
				Mtime:       f.Modified.Unix(),
				IsDirectory: true,
			})
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return kept, cleanup, pipeline.NewArchiveCorruptError("reading unchanged entry "+f.Name, err)
		}

		tmp, err := os.CreateTemp("", "gbzip-diff-*")
		if err != nil {
			rc.Close()
			return kept, cleanup, pipeline.NewIoFailureError("buffering unchanged entry", err)
		}

		n, copyErr := io.Copy(tmp, rc)
		rc.Close()
		closeErr := tmp.Close()
		if copyErr != nil {
			return kept, cleanup, pipeline.NewIoFailureError("buffering unchanged entry "+f.Name, copyErr)
		}
		if closeErr != nil {
			return kept, cleanup, pipeline.NewIoFailureError("buffering unchanged entry "+f.Name, closeErr)
		}

		kept = append(kept, pipeline.FileEntry{
			SourcePath:  tmp.Name(),
			ArchivePath: f.Name,
			Size:        n,
			Mtime:       f.Modified.Unix(),
		})
	}

	return kept, cleanup, nil
}
