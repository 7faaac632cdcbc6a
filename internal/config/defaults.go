package config

// Built-in default values for gbzip. These populate config.Resolved before
// any TOML config file or CLI flag layer is merged on top.
const (
	// DefaultCompressionLevel is the raw DEFLATE level used unless -0, -9, or
	// a config file overrides it.
	DefaultCompressionLevel = 6

	// DefaultLargeFileThreshold is the per-file size (bytes) at or above
	// which a file is considered "large" and routed to the Phase B worker
	// pool instead of being streamed in Phase C.
	DefaultLargeFileThreshold int64 = 1 << 20 // 1 MiB

	// DefaultParallelActivationThreshold is the total bytes of large files
	// that must be present before the worker pool is spun up at all.
	DefaultParallelActivationThreshold int64 = 5 << 20 // 5 MiB

	// MaxWorkers bounds the worker pool regardless of host parallelism.
	MaxWorkers = 16

	// MaxIgnorePatterns caps the number of compiled patterns an
	// IgnoreContext will hold.
	MaxIgnorePatterns = 1000

	// MaxIgnoreFiles caps the number of distinct .zipignore files an
	// IgnoreContext will load.
	MaxIgnoreFiles = 100

	// MaxMatchRecursionDepth bounds the glob matcher's backtracking depth.
	MaxMatchRecursionDepth = 100

	// DefaultMaxExtractFiles is the default cap on entries extracted from a
	// single archive, per spec Open Question 3.
	DefaultMaxExtractFiles = 100000

	// DefaultMaxExtractSize is the default cap on total uncompressed bytes
	// written during extraction.
	DefaultMaxExtractSize int64 = 16 << 30 // 16 GiB

	// DefaultMaxCompressionRatio is the default cap on the ratio of
	// uncompressed size to compressed size for any single entry.
	DefaultMaxCompressionRatio = 1000

	// ZipignoreFilename is the name of the hierarchical ignore file.
	ZipignoreFilename = ".zipignore"
)

// ClampWorkers applies the worker-count clamp described in spec section 5:
// N = clamp(hardwareParallelism, 1, MaxWorkers).
func ClampWorkers(hardwareParallelism int) int {
	if hardwareParallelism < 1 {
		return 1
	}
	if hardwareParallelism > MaxWorkers {
		return MaxWorkers
	}
	return hardwareParallelism
}
