package job

import (
	"errors"
	"fmt"
)

// Kind classifies a job failure for the outward error contract.
type Kind string

const (
	// KindConfig is a bad or missing required setting, caught before any file I/O.
	KindConfig Kind = "config"
	// KindPath is a missing directory or unreadable file.
	KindPath Kind = "path"
	// KindConversion means a single-file conversion exhausted its retries.
	KindConversion Kind = "conversion"
	// KindProcessing means a PDF primitive failed, e.g. a corrupt fragment.
	KindProcessing Kind = "processing"
	// KindStructural means invalid TOC level nesting or a section with zero
	// convertible content.
	KindStructural Kind = "structural"
	// KindAutomation means the external converter session is unrecoverable.
	KindAutomation Kind = "automation"
	// KindCancelled marks cooperative cancellation; an alternate outcome,
	// not a real error.
	KindCancelled Kind = "cancelled"
	// KindBusy means another job is already in flight.
	KindBusy Kind = "busy"
)

// ErrBusy is returned when a second job is requested while one is running.
var ErrBusy = &Error{Kind: KindBusy, Msg: "a job is already in flight"}

// ErrCancelled marks the cancellation outcome.
var ErrCancelled = &Error{Kind: KindCancelled, Msg: "job cancelled"}

// Error is the single outward error type of the pipeline. The originating
// low-level cause is chained, never discarded.
type Error struct {
	Kind  Kind
	Stage string // pipeline stage where the failure surfaced, if known
	Path  string // file or directory involved, if any
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := string(e.Kind)
	if e.Stage != "" {
		s += " [" + e.Stage + "]"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Path != "" {
		s += ": " + e.Path
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can test errors.Is(err, job.ErrBusy).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds an Error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error chaining a cause.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain.
// Returns an empty Kind when the chain carries no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
