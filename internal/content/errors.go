// Package content implements the Viewer's streaming content subsystem:
// encoding detection, line reflow, the line/offset index, the sliding data
// window, the content cache facade, search, and the hex-edit patch store.
package content

import (
	"errors"
	"fmt"
)

// Kind classifies an Error without requiring callers to inspect its
// underlying cause. Matches the taxonomy in the project's error design: OS
// errors are recoverable and shown in the footer; Aborted and EndOfStream
// are normal control-flow outcomes, not failures to report to the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	KindIoFailure
	KindInvalidArgument
	KindAborted
	KindSaveFailure
	KindEndOfStream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindIoFailure:
		return "I/O failure"
	case KindInvalidArgument:
		return "invalid argument"
	case KindAborted:
		return "aborted"
	case KindSaveFailure:
		return "save failure"
	case KindEndOfStream:
		return "end of stream"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on
// category (e.g. render in the footer vs. treat as a normal EOF) without
// string-matching messages.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "content.Cache.Open"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Aborted is the sentinel returned by long-running ingestion loops
// (ProcessThrough/ProcessToEnd/Find) when Interrupt is set mid-loop.
var Aborted = &Error{Op: "content", Kind: KindAborted, Err: errors.New("canceled")}

// EndOfStream is the sentinel for the normal end-of-stream condition. It is
// never surfaced to the user as an error; ProcessThrough and ProcessToEnd
// report reaching the end of the stream by returning nil, not this value.
var EndOfStream = &Error{Op: "content", Kind: KindEndOfStream, Err: errors.New("end of stream")}

// IsAborted reports whether err is (or wraps) the Aborted sentinel.
func IsAborted(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindAborted
	}
	return false
}

// IsEndOfStream reports whether err is (or wraps) the EndOfStream sentinel.
func IsEndOfStream(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindEndOfStream
	}
	return false
}
