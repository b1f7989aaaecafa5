package files

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure for the transport boundary.
type Kind string

const (
	KindInvalidFileType  Kind = "invalid_file_type"
	KindPayloadTooLarge  Kind = "payload_too_large"
	KindNotFound         Kind = "not_found"
	KindBlobMissing      Kind = "blob_missing"
	KindStoreUnavailable Kind = "store_unavailable"
)

// Error is the structured failure type crossing the service boundary.
// Message is safe to show to callers; the wrapped cause may carry
// internal detail and stays server-side.
type Error struct {
	Kind    Kind
	Message string

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// KindOf returns the failure kind of err, or "" for untyped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func newInvalidFileType(mimetype string) *Error {
	return &Error{
		Kind:    KindInvalidFileType,
		Message: fmt.Sprintf("invalid file type: %s", mimetype),
	}
}

func newPayloadTooLarge(size, limit int64) *Error {
	return &Error{
		Kind:    KindPayloadTooLarge,
		Message: fmt.Sprintf("file size %d exceeds the limit of %d bytes", size, limit),
	}
}

func newNotFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("file %s not found", id),
	}
}

func newBlobMissing(id string) *Error {
	return &Error{
		Kind:    KindBlobMissing,
		Message: fmt.Sprintf("file %s exists but its content is missing from storage", id),
	}
}

func newStoreUnavailable(op string, cause error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Message: fmt.Sprintf("storage failure during %s", op),
		cause:   cause,
	}
}
