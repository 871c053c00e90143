// Package pdf implements the PDF-manipulation primitives of the pipeline:
// merging fragments, generating TOC and separator pages, stamping page
// numbers, building the outline tree, and optional compression. Every
// in-place mutation of an existing file goes through atomicfile.
package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Config carries the injected tunables for PDF operations.
type Config struct {
	// TOCTitle is the heading of the generated table-of-contents page.
	TOCTitle string
	// FontFile is an optional TTF for generated pages.
	FontFile string
	// NumberPoints is the page-number font size.
	NumberPoints int
	// NumberOffsetY is the page-number distance from the bottom edge, in points.
	NumberOffsetY int
	// Ghostscript is the external compressor executable; empty disables it.
	Ghostscript string
	// CompressTimeout caps one compression run.
	CompressTimeout time.Duration
}

// Processor provides the PDF primitives.
type Processor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Processor. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TOCTitle == "" {
		cfg.TOCTitle = "Table of Contents"
	}
	if cfg.NumberPoints <= 0 {
		cfg.NumberPoints = 10
	}
	return &Processor{cfg: cfg, logger: logger}
}

// conf returns a pdfcpu configuration with relaxed validation; converter
// output is frequently produced by sloppy writers.
func conf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}

// PageCount returns the physical page count of a PDF.
func (p *Processor) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	return count, nil
}

// Validate checks that path opens as a well-formed PDF.
func (p *Processor) Validate(path string) error {
	if err := api.ValidateFile(path, conf()); err != nil {
		return fmt.Errorf("not a well-formed PDF: %s: %w", path, err)
	}
	return nil
}
