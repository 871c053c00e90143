package types

// FailureReason describes why a single-file conversion produced no PDF.
type FailureReason string

const (
	// ReasonNone means the conversion succeeded.
	ReasonNone FailureReason = ""
	// ReasonUnsupported means no converter handles the file's extension.
	ReasonUnsupported FailureReason = "unsupported"
	// ReasonScratchFile means the file is an office scratch artifact (~$ or .$
	// prefixed) and was skipped on purpose.
	ReasonScratchFile FailureReason = "scratch-file"
	// ReasonExhausted means every retry attempt failed.
	ReasonExhausted FailureReason = "exhausted"
	// ReasonUnreadable means the source could not be read or did not parse.
	ReasonUnreadable FailureReason = "unreadable"
)

// ConversionResult is the per-source-file outcome of one conversion.
// Transient; created and discarded within one collection pass.
type ConversionResult struct {
	Source   string        // source file path
	PDFPath  string        // produced PDF, set only on success
	Reason   FailureReason // set only on failure or skip
	Attempts int           // attempts used, including the successful one
	Err      error         // last underlying error, for diagnostics
}

// OK reports whether the conversion produced a PDF.
func (r *ConversionResult) OK() bool {
	return r.PDFPath != ""
}
