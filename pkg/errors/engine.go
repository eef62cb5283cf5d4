package errors

// EngineError is a specialized error type for backing-engine operations —
// everything that touches the bbolt database file (or its in-memory test
// double) underneath the store. It embeds baseError to inherit the standard
// error functionality, then adds context that pinpoints exactly where in the
// engine the problem occurred.
type EngineError struct {
	*baseError
	bucket    string // Name of the bucket being accessed (latest tier or a segment sub-bucket).
	segmentID uint64 // Segment id involved in the error, if applicable.
	key       string // Key being processed when the error occurred, if applicable.
	operation string // Backing-engine operation in progress ("get", "put", "flush", ...).
}

// NewEngineError creates a new engine-specific error.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(err, code, msg)}
}

// WithBucket records which bucket was involved in the error.
func (ee *EngineError) WithBucket(bucket string) *EngineError {
	ee.bucket = bucket
	return ee
}

// WithSegmentID records which segment was involved in the error.
func (ee *EngineError) WithSegmentID(id uint64) *EngineError {
	ee.segmentID = id
	return ee
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithOperation records which backing-engine operation was in progress.
func (ee *EngineError) WithOperation(operation string) *EngineError {
	ee.operation = operation
	return ee
}

// WithDetail adds contextual information while maintaining the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// Bucket returns the bucket name involved in the error.
func (ee *EngineError) Bucket() string {
	return ee.bucket
}

// SegmentID returns the segment id involved in the error.
func (ee *EngineError) SegmentID() uint64 {
	return ee.segmentID
}

// Key returns the key being processed when the error occurred.
func (ee *EngineError) Key() string {
	return ee.key
}

// Operation returns the backing-engine operation that was in progress.
func (ee *EngineError) Operation() string {
	return ee.operation
}
