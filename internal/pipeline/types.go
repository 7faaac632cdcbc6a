// Package pipeline defines the data types shared across the ignore,
// collector, compress and diff stages. It has zero dependency on any one
// of those packages so each can import it without a cycle.
package pipeline

// FileEntry is one unit of archive work, produced by the collector and
// consumed by the compression pipeline.
type FileEntry struct {
	// SourcePath is the absolute path on disk. Collected entries, including
	// directories, always have one; directory entries carried over from an
	// existing archive by diffengine leave it empty.
	SourcePath string

	// ArchivePath is the forward-slash relative path as it will appear in
	// the archive, with a trailing '/' for directories.
	ArchivePath string

	// Size is the entry's size in bytes; 0 for directories.
	Size int64

	// Mtime is the modification time, seconds since epoch.
	Mtime int64

	IsDirectory bool

	// PrecompressedPayload holds raw DEFLATE bytes produced by a Phase B
	// worker, nil if this entry was never routed to the worker pool or if
	// pre-compression failed.
	PrecompressedPayload []byte

	// CRC32 is the checksum of the uncompressed bytes, computed alongside
	// PrecompressedPayload so Phase C can call zip.Writer.CreateRaw without
	// re-reading the source file.
	CRC32 uint32

	// CompressionOK is true iff PrecompressedPayload holds a valid raw
	// DEFLATE stream for this entry's uncompressed bytes.
	CompressionOK bool
}

// ChangeKind classifies one Change record.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Deleted
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is one record in a ChangeSet.
type Change struct {
	ArchivePath string
	Kind        ChangeKind
	OldMtime    int64
	NewMtime    int64
	OldSize     int64
	NewSize     int64
}

// ChangeSet is an ordered list of Change records produced by the diff
// engine and consumed by its apply step.
type ChangeSet struct {
	Changes []Change
}

// DiffSummary breaks a ChangeSet down by kind for display, sparing callers
// from re-deriving the counts.
type DiffSummary struct {
	Added    int
	Modified int
	Deleted  int
}

// Summarize tallies a ChangeSet into a DiffSummary.
func (cs ChangeSet) Summarize() DiffSummary {
	var s DiffSummary
	for _, c := range cs.Changes {
		switch c.Kind {
		case Added:
			s.Added++
		case Modified:
			s.Modified++
		case Deleted:
			s.Deleted++
		}
	}
	return s
}

// ArchiveEntry is one member of an ArchiveEntryIndex.
type ArchiveEntry struct {
	Name        string
	Mtime       int64
	Size        int64
	IsDirectory bool
}

// ArchiveEntryIndex is a snapshot read from an existing archive's central
// directory, keyed on entry name for O(1) diff lookups.
type ArchiveEntryIndex struct {
	Entries map[string]ArchiveEntry

	// SourceDir is the collection root recorded in the archive comment at
	// create time, used by `gbzip -u` / bare `diff` to recover an implicit
	// target directory.
	SourceDir string
}

// CollectSummary accumulates counters produced while the collector walks
// a tree; it drives progress reporting and the Phase B activation
// decision.
type CollectSummary struct {
	TotalFiles     int
	TotalBytes     int64
	LargeFileCount int
	LargeFileBytes int64
}
