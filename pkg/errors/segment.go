package errors

// SegmentError provides specialized error handling for SegmentValue codec
// failures: a corrupt header, a descriptor table that never meets the value
// heap, or a key found inside a SegmentValue it doesn't belong to. It embeds
// baseError and is always considered fatal for the blob involved — the spec
// treats segment corruption as something to surface, not recover from.
type SegmentError struct {
	*baseError

	// Identifies which key was being processed when the error occurred.
	key string

	// Which segment id the offending SegmentValue belongs to.
	segmentID uint64

	// Which codec operation was being performed ("decode", "insert", "update").
	operation string

	// Size in bytes of the offending blob, for diagnosing truncation.
	blobSize int

	// Physical descriptor index being read or written when the error occurred.
	descriptorIndex int
}

// NewSegmentError creates a new segment-codec error with the provided context.
func NewSegmentError(err error, code ErrorCode, msg string) *SegmentError {
	return &SegmentError{baseError: NewBaseError(err, code, msg)}
}

// WithKey records which key was being processed when the error occurred.
func (se *SegmentError) WithKey(key string) *SegmentError {
	se.key = key
	return se
}

// WithSegmentID records which segment the offending blob belongs to.
func (se *SegmentError) WithSegmentID(id uint64) *SegmentError {
	se.segmentID = id
	return se
}

// WithOperation records which codec operation was being performed.
func (se *SegmentError) WithOperation(operation string) *SegmentError {
	se.operation = operation
	return se
}

// WithBlobSize records the size of the offending blob.
func (se *SegmentError) WithBlobSize(size int) *SegmentError {
	se.blobSize = size
	return se
}

// WithDescriptorIndex records which physical descriptor slot was involved.
func (se *SegmentError) WithDescriptorIndex(index int) *SegmentError {
	se.descriptorIndex = index
	return se
}

// WithDetail adds contextual information while maintaining the SegmentError type.
func (se *SegmentError) WithDetail(key string, value any) *SegmentError {
	se.baseError.WithDetail(key, value)
	return se
}

// Key returns the key that was being processed when the error occurred.
func (se *SegmentError) Key() string {
	return se.key
}

// SegmentID returns the segment id the offending blob belongs to.
func (se *SegmentError) SegmentID() uint64 {
	return se.segmentID
}

// Operation returns the codec operation that was being performed.
func (se *SegmentError) Operation() string {
	return se.operation
}

// BlobSize returns the size of the offending blob.
func (se *SegmentError) BlobSize() int {
	return se.blobSize
}

// DescriptorIndex returns the physical descriptor slot involved in the error.
func (se *SegmentError) DescriptorIndex() int {
	return se.descriptorIndex
}

// NewSegmentCorruptedError creates an error for a SegmentValue whose
// descriptor table never reaches the value heap boundary during decode.
func NewSegmentCorruptedError(segmentID uint64, key string, blobSize int, cause error) *SegmentError {
	return NewSegmentError(cause, ErrorCodeSegmentCorrupted, "segment value blob is corrupted").
		WithSegmentID(segmentID).
		WithKey(key).
		WithOperation("decode").
		WithBlobSize(blobSize).
		WithDetail("recovery_required", true)
}

// NewHeaderReadError creates an error for a blob shorter than the fixed
// 16-byte SegmentValue header.
func NewHeaderReadError(segmentID uint64, key string, blobSize int) *SegmentError {
	return NewSegmentError(nil, ErrorCodeHeaderReadFailure, "segment value header truncated").
		WithSegmentID(segmentID).
		WithKey(key).
		WithOperation("decode").
		WithBlobSize(blobSize).
		WithDetail("minimum_size", 16)
}

// NewDescriptorReadError creates an error for a descriptor table the
// meet-in-the-middle scan could not fully parse.
func NewDescriptorReadError(segmentID uint64, key string, descriptorIndex int) *SegmentError {
	return NewSegmentError(nil, ErrorCodeDescriptorReadFailure, "segment value descriptor table truncated").
		WithSegmentID(segmentID).
		WithKey(key).
		WithOperation("decode").
		WithDescriptorIndex(descriptorIndex)
}

// NewKeyMismatchError creates an error for a key found in a SegmentValue
// that does not belong to it (invariant 4 of the codec).
func NewKeyMismatchError(segmentID uint64, expectedKey, actualKey string) *SegmentError {
	return NewSegmentError(nil, ErrorCodeKeyMismatch, "key does not belong to this segment value").
		WithSegmentID(segmentID).
		WithKey(expectedKey).
		WithOperation("validate").
		WithDetail("actualKey", actualKey)
}
