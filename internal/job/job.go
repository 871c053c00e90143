// Package job defines the request/outcome contract of a merge run, the
// error taxonomy, progress reporting, and the job-scoped temp workspace.
package job

import (
	"binder/internal/types"
)

// Request is the immutable input to one merge run. It is constructed once
// per invocation by the CLI (or any other caller) and never mutated.
type Request struct {
	// Root is the input directory to walk.
	Root string
	// OutputPath is where the final merged PDF is written.
	OutputPath string
	// PlanType hints the folder-structure variant; VariantUnknown means
	// auto-detect.
	PlanType types.Variant
	// CoverTitle overrides the title printed on generated front matter.
	CoverTitle string
	// Compress requests a compression pass on the final document.
	Compress bool
	// Progress receives discrete progress events. Nil means no reporting.
	Progress Progress
}

// Status is the terminal state of a run.
type Status string

const (
	// StatusSuccess means exactly one final PDF exists at the requested path.
	StatusSuccess Status = "success"
	// StatusCancelled means the caller cancelled; not an error.
	StatusCancelled Status = "cancelled"
	// StatusFailed means a stage failed; the destination is untouched.
	StatusFailed Status = "failed"
)

// WarningKind classifies a recoverable problem reported on success.
type WarningKind string

const (
	// WarnSkippedFile is a file skipped after conversion failed or because
	// its format is unsupported.
	WarnSkippedFile WarningKind = "skipped-file"
	// WarnEmptySection is a directory that contributed no convertible content.
	WarnEmptySection WarningKind = "empty-section"
	// WarnCompression means the optional compression pass failed; the
	// uncompressed output is still valid.
	WarnCompression WarningKind = "compression"
	// WarnDetection is a folder-structure detection caveat.
	WarnDetection WarningKind = "detection"
)

// Warning is one recoverable problem encountered during a successful run.
type Warning struct {
	Kind WarningKind
	Path string // file or directory concerned, if any
	Msg  string
}

// Outcome is the exit contract of the orchestrator: exactly one of
// Success(path, warnings), Cancelled, or Failed(stage, cause).
type Outcome struct {
	Status     Status
	OutputPath string    // set on success
	Warnings   []Warning // skipped files, empty sections, degraded operation
	Stage      string    // stage that failed, set on failure
	Err        error     // cause, set on failure
}

// Succeeded reports whether the run produced the output document.
func (o *Outcome) Succeeded() bool { return o.Status == StatusSuccess }
