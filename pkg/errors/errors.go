// Package errors gives the store a structured error taxonomy instead of bare
// fmt.Errorf strings. When something fails, callers need more than "it
// didn't work": they need to know which category of failure it was, what
// key/segment/bucket was involved, and whether it's the kind of thing a
// retry can fix.
//
// baseError is the common foundation; ValidationError, EngineError, and
// SegmentError each add the context relevant to their own failure domain
// while preserving error chaining (Unwrap) and error codes for programmatic
// handling.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsValidationError checks if the given error is a ValidationError or contains one in its error chain.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsEngineError determines if an error originated in the backing engine —
// bbolt I/O, bucket access, or transaction failures.
func IsEngineError(err error) bool {
	var ee *EngineError
	return stdErrors.As(err, &ee)
}

// IsSegmentError identifies errors that occurred decoding or manipulating a
// SegmentValue blob.
func IsSegmentError(err error) bool {
	var se *SegmentError
	return stdErrors.As(err, &se)
}

// AsValidationError safely extracts a ValidationError from an error chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsEngineError extracts EngineError context from an error chain, giving
// access to the bucket, segment id, key, and operation involved.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if stdErrors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// AsSegmentError extracts SegmentError context from an error chain, giving
// access to the key, segment id, and codec operation involved.
func AsSegmentError(err error) (*SegmentError, bool) {
	var se *SegmentError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or
// returns ErrorCodeInternal for errors that don't carry one.
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if ee, ok := AsEngineError(err); ok {
		return ee.Code()
	}
	if se, ok := AsSegmentError(err); ok {
		return se.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports
// them, returning an empty map for errors without details.
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok {
		if details := ve.Details(); details != nil {
			return details
		}
	}
	if ee, ok := AsEngineError(err); ok {
		if details := ee.Details(); details != nil {
			return details
		}
	}
	if se, ok := AsSegmentError(err); ok {
		if details := se.Details(); details != nil {
			return details
		}
	}
	return make(map[string]any)
}

// ClassifyStateDirError analyzes a failure creating the stream context's
// state directory and returns an EngineError with a code matching the
// underlying system error.
func ClassifyStateDirError(err error, path string) error {
	if os.IsPermission(err) {
		return NewEngineError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create state directory",
		).WithBucket(path).
			WithOperation("create_state_dir").
			WithDetail("suggestion", "check directory permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewEngineError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create state directory",
				).WithBucket(path).
					WithOperation("create_state_dir").
					WithDetail("suggestion", "free up disk space or choose a different location")
			case syscall.EROFS:
				return NewEngineError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create state directory on read-only filesystem",
				).WithBucket(path).
					WithOperation("create_state_dir").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewEngineError(
		err, ErrorCodeIO, "failed to create state directory",
	).WithBucket(path).WithOperation("create_state_dir")
}

// ClassifyOpenError analyzes a failure opening the backing engine's data
// file and returns an EngineError with a code matching the underlying
// system error.
func ClassifyOpenError(err error, dataFile string) error {
	if os.IsPermission(err) {
		return NewEngineError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open store data file",
		).WithBucket(dataFile).
			WithOperation("open").
			WithDetail("suggestion", "check file permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewEngineError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to open store data file",
				).WithBucket(dataFile).
					WithOperation("open").
					WithDetail("suggestion", "free up disk space")
			case syscall.EROFS:
				return NewEngineError(
					err, ErrorCodeFilesystemReadonly,
					"cannot open store data file on read-only filesystem",
				).WithBucket(dataFile).
					WithOperation("open").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewEngineError(err, ErrorCodeIO, "failed to open store data file").
		WithBucket(dataFile).
		WithOperation("open")
}

// ClassifyFlushError analyzes a failure syncing the backing engine's data
// file to disk.
func ClassifyFlushError(err error, dataFile string) error {
	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewEngineError(
					err, ErrorCodeDiskFull,
					"cannot flush store: insufficient disk space",
				).WithBucket(dataFile).
					WithOperation("flush").
					WithDetail("suggestion", "free up disk space before continuing")
			case syscall.EROFS:
				return NewEngineError(
					err, ErrorCodeFilesystemReadonly,
					"cannot flush store: filesystem is read-only",
				).WithBucket(dataFile).
					WithOperation("flush").
					WithDetail("suggestion", "remount filesystem with write permissions")
			case syscall.EIO:
				return NewEngineError(
					err, ErrorCodeIO,
					"I/O error during flush - possible hardware or corruption issue",
				).WithBucket(dataFile).
					WithOperation("flush").
					WithDetail("severity", "high").
					WithDetail("suggestion", "check filesystem integrity and hardware health")
			}
		}
	}

	return NewEngineError(
		err, ErrorCodeFlushFailed, "failed to flush store data file",
	).WithBucket(dataFile).WithOperation("flush")
}
