package job

import "log/slog"

// FileStatus describes what happened to one source file during collection.
type FileStatus string

const (
	FileConverted FileStatus = "converted"
	FileSkipped   FileStatus = "skipped"
	FileFailed    FileStatus = "failed"
)

// Progress receives discrete pipeline events. Implementations decide how to
// display them; the pipeline neither knows nor cares.
type Progress interface {
	// StageEntered is called when the orchestrator enters a stage.
	StageEntered(stage string)
	// FileProcessed is called once per source file during collection.
	FileProcessed(path string, status FileStatus)
	// Percent reports overall completion in [0, 100].
	Percent(pct float64)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) StageEntered(string)              {}
func (NopProgress) FileProcessed(string, FileStatus) {}
func (NopProgress) Percent(float64)                  {}

// LogProgress forwards events to a slog logger.
type LogProgress struct {
	Logger *slog.Logger
}

// NewLogProgress wraps a logger as a progress sink.
// A nil logger falls back to slog.Default().
func NewLogProgress(logger *slog.Logger) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgress{Logger: logger}
}

func (p *LogProgress) StageEntered(stage string) {
	p.Logger.Info("stage entered", "stage", stage)
}

func (p *LogProgress) FileProcessed(path string, status FileStatus) {
	p.Logger.Info("file processed", "file", path, "status", status)
}

func (p *LogProgress) Percent(pct float64) {
	p.Logger.Debug("progress", "percent", pct)
}

// Sink returns progress if non-nil, else a NopProgress.
func Sink(progress Progress) Progress {
	if progress == nil {
		return NopProgress{}
	}
	return progress
}
