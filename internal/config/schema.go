package config

import (
	"fmt"
	"time"
)

// Config holds binder configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Convert  ConvertCfg  `mapstructure:"convert" yaml:"convert"`
	Detect   DetectCfg   `mapstructure:"detect" yaml:"detect"`
	Collect  CollectCfg  `mapstructure:"collect" yaml:"collect"`
	PDF      PDFCfg      `mapstructure:"pdf" yaml:"pdf"`
	Compress CompressCfg `mapstructure:"compress" yaml:"compress"`
	Scratch  ScratchCfg  `mapstructure:"scratch" yaml:"scratch"`
}

// ConvertCfg tunes the converter registry.
type ConvertCfg struct {
	// MaxAttempts bounds retries for the flaky automation-backed converters.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
	// AttemptTimeout caps one external conversion attempt.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
	// RetryBackoff is the base delay between attempts; it grows per attempt.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`
	// OfficeCommand is the argv template driving the office automation
	// layer. {input} and {outdir} are substituted per file.
	OfficeCommand []string `mapstructure:"office_command" yaml:"office_command"`
	// LegacyCommand is the argv template for the legacy word-processor
	// converter. Empty disables the legacy converter.
	LegacyCommand []string `mapstructure:"legacy_command" yaml:"legacy_command"`
}

// DetectCfg tunes folder-structure detection.
type DetectCfg struct {
	// ConfidenceThreshold below which detection reports unknown.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	// CategoryKeywords are folder-name hints counting toward the
	// three-level layout score.
	CategoryKeywords []string `mapstructure:"category_keywords" yaml:"category_keywords"`
}

// CollectCfg tunes document collection.
type CollectCfg struct {
	// CoverKeywords mark a root-level file as the cover document.
	CoverKeywords []string `mapstructure:"cover_keywords" yaml:"cover_keywords"`
	// Locale is the BCP 47 tag used for locale-aware name ordering.
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// PDFCfg tunes generated pages and stamping.
type PDFCfg struct {
	// TOCTitle is the heading printed on the table-of-contents page.
	TOCTitle string `mapstructure:"toc_title" yaml:"toc_title"`
	// FontFile is an optional TTF used for generated pages; required when
	// section titles fall outside cp1252.
	FontFile string `mapstructure:"font_file" yaml:"font_file"`
	// NumberPoints is the page-number font size in points.
	NumberPoints int `mapstructure:"number_points" yaml:"number_points"`
	// NumberOffsetY is the page-number distance from the bottom edge, in points.
	NumberOffsetY int `mapstructure:"number_offset_y" yaml:"number_offset_y"`
}

// CompressCfg configures the optional external compressor.
type CompressCfg struct {
	// Ghostscript is the gs executable path; empty means compression is
	// unavailable and requested compression degrades to a warning.
	Ghostscript string `mapstructure:"ghostscript" yaml:"ghostscript"`
	// Timeout caps one compression run.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ScratchCfg tunes workspace housekeeping.
type ScratchCfg struct {
	// MaxAge after which leftover job workspaces are swept at startup.
	MaxAge time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Convert: ConvertCfg{
			MaxAttempts:    3,
			AttemptTimeout: 90 * time.Second,
			RetryBackoff:   2 * time.Second,
			OfficeCommand:  []string{"soffice", "--headless", "--convert-to", "pdf", "--outdir", "{outdir}", "{input}"},
			LegacyCommand:  nil,
		},
		Detect: DetectCfg{
			ConfidenceThreshold: 0.7,
			CategoryKeywords:    nil,
		},
		Collect: CollectCfg{
			CoverKeywords: []string{"cover", "表紙"},
			Locale:        "und",
		},
		PDF: PDFCfg{
			TOCTitle:      "Table of Contents",
			FontFile:      "",
			NumberPoints:  10,
			NumberOffsetY: 15,
		},
		Compress: CompressCfg{
			Ghostscript: "",
			Timeout:     5 * time.Minute,
		},
		Scratch: ScratchCfg{
			MaxAge: 24 * time.Hour,
		},
	}
}

// Validate checks the configuration before any file I/O happens.
func (c *Config) Validate() error {
	if c.Convert.MaxAttempts < 1 {
		return fmt.Errorf("convert.max_attempts must be at least 1, got %d", c.Convert.MaxAttempts)
	}
	if c.Convert.AttemptTimeout <= 0 {
		return fmt.Errorf("convert.attempt_timeout must be positive, got %s", c.Convert.AttemptTimeout)
	}
	if c.Convert.RetryBackoff < 0 {
		return fmt.Errorf("convert.retry_backoff must not be negative, got %s", c.Convert.RetryBackoff)
	}
	if len(c.Convert.OfficeCommand) == 0 {
		return fmt.Errorf("convert.office_command must not be empty")
	}
	if c.Detect.ConfidenceThreshold < 0 || c.Detect.ConfidenceThreshold > 1 {
		return fmt.Errorf("detect.confidence_threshold must be in [0, 1], got %g", c.Detect.ConfidenceThreshold)
	}
	if c.PDF.NumberPoints <= 0 {
		return fmt.Errorf("pdf.number_points must be positive, got %d", c.PDF.NumberPoints)
	}
	if c.PDF.NumberOffsetY < 0 {
		return fmt.Errorf("pdf.number_offset_y must not be negative, got %d", c.PDF.NumberOffsetY)
	}
	if c.Compress.Timeout <= 0 {
		return fmt.Errorf("compress.timeout must be positive, got %s", c.Compress.Timeout)
	}
	if c.Scratch.MaxAge <= 0 {
		return fmt.Errorf("scratch.max_age must be positive, got %s", c.Scratch.MaxAge)
	}
	return nil
}
