package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes the backing engine's file I/O and any
	// state-directory filesystem operations performed on its behalf.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories — bugs, assertion failures, or other programming
	// errors that shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Engine-specific error codes extend the base taxonomy to handle the backing
// KV engine's failure modes: bucket access, transaction commit, and the
// filesystem operations the engine performs underneath bbolt.
const (
	// ErrorCodeBucketMissing indicates a latest-tier or segment bucket the
	// store expected to exist was not found in the backing engine.
	ErrorCodeBucketMissing ErrorCode = "BUCKET_MISSING"

	// ErrorCodeTxFailure indicates a backing-engine transaction failed to
	// commit — the underlying write or the buckets it touched are unchanged.
	ErrorCodeTxFailure ErrorCode = "TX_FAILURE"

	// ErrorCodeFlushFailed indicates the backing engine could not durably
	// sync its data file to disk.
	ErrorCodeFlushFailed ErrorCode = "FLUSH_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// the store's data file or state directory.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates the storage device backing the engine has
	// run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates the filesystem holding the store's
	// data file is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Segment-specific error codes address failures decoding or manipulating a
// SegmentValue blob — the packed multi-version record the segment-value
// codec reads and writes.
const (
	// ErrorCodeSegmentCorrupted indicates a SegmentValue blob's structure
	// does not match the codec's expected layout (bad header, descriptor
	// table that doesn't meet the value heap at the computed boundary).
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeHeaderReadFailure occurs when the fixed 16-byte header of a
	// SegmentValue cannot be read — the blob is shorter than the minimum
	// valid size.
	ErrorCodeHeaderReadFailure ErrorCode = "HEADER_READ_FAILURE"

	// ErrorCodeDescriptorReadFailure indicates the descriptor table could not
	// be fully parsed before the meet-in-the-middle scan ran out of bytes.
	ErrorCodeDescriptorReadFailure ErrorCode = "DESCRIPTOR_READ_FAILURE"

	// ErrorCodeKeyMismatch indicates a key was found in a SegmentValue that
	// does not belong to it — a violation of the codec's "one key per
	// SegmentValue" invariant.
	ErrorCodeKeyMismatch ErrorCode = "KEY_MISMATCH"

	// ErrorCodeRecoveryFailed indicates an attempt to recover a SegmentValue
	// after a detected inconsistency was itself unsuccessful.
	ErrorCodeRecoveryFailed ErrorCode = "SEGMENT_RECOVERY_FAILED"
)
