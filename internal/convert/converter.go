package convert

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"

	"binder/internal/config"
	"binder/internal/types"
)

// Options configures a Converter.
type Options struct {
	// MaxAttempts bounds retries for automation-backed converters.
	MaxAttempts int
	// Backoff is the base delay between attempts.
	Backoff time.Duration
	// Office handles the common office formats.
	Office Automator
	// Legacy handles the legacy word-processor format; nil disables it.
	Legacy Automator
	Logger *slog.Logger
}

// Converter produces one PDF fragment per supported source file.
type Converter struct {
	maxAttempts int
	backoff     time.Duration
	office      Automator
	legacy      Automator
	logger      *slog.Logger
}

// New creates a Converter.
func New(opts Options) *Converter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Converter{
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		office:      opts.Office,
		legacy:      opts.Legacy,
		logger:      opts.Logger,
	}
}

// NewFromConfig wires a Converter with exec-backed automators from the
// convert configuration section.
func NewFromConfig(cfg config.ConvertCfg, logger *slog.Logger) *Converter {
	opts := Options{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.RetryBackoff,
		Office:      NewExecAutomator(cfg.OfficeCommand, cfg.AttemptTimeout, logger),
		Logger:      logger,
	}
	if len(cfg.LegacyCommand) > 0 {
		opts.Legacy = NewExecAutomator(cfg.LegacyCommand, cfg.AttemptTimeout, logger)
	}
	return New(opts)
}

// Convert produces the PDF fragment for src inside workDir and reports
// the outcome. It never returns an error: failures are encoded in the
// result so the caller can decide between skipping and aborting.
func (c *Converter) Convert(ctx context.Context, src, workDir string) *types.ConversionResult {
	res := &types.ConversionResult{Source: src}
	base := filepath.Base(src)

	if IsScratchFile(base) {
		res.Reason = types.ReasonScratchFile
		return res
	}
	kind := Classify(src)
	if kind == KindUnsupported {
		res.Reason = types.ReasonUnsupported
		return res
	}
	if kind == KindLegacy && c.legacy == nil {
		c.logger.Debug("legacy converter not configured", "file", src)
		res.Reason = types.ReasonUnsupported
		return res
	}

	dst := filepath.Join(workDir, FragmentName(src))

	// A fragment left by an earlier pass over the same source is reused
	// as is; re-running a half-failed job should not redo finished work.
	if looksLikePDF(dst) {
		c.logger.Debug("reusing existing fragment", "file", src, "fragment", dst)
		res.PDFPath = dst
		return res
	}

	switch kind {
	case KindPDF:
		res.Attempts = 1
		if err := c.copyPDF(src, dst); err != nil {
			res.Reason = types.ReasonUnreadable
			res.Err = err
			return res
		}
	case KindImage:
		res.Attempts = 1
		if err := c.imageToPDF(src, dst, workDir); err != nil {
			res.Reason = types.ReasonUnreadable
			res.Err = err
			return res
		}
	case KindOffice:
		c.automate(ctx, c.office, src, dst, res)
	case KindLegacy:
		c.automate(ctx, c.legacy, src, dst, res)
	}
	if res.Reason != types.ReasonNone {
		return res
	}

	if !looksLikePDF(dst) {
		res.Reason = types.ReasonUnreadable
		res.Err = fmt.Errorf("converter output is not a PDF: %s", dst)
		return res
	}
	res.PDFPath = dst
	return res
}

// automate runs an automation-backed conversion with bounded retries.
// Each failed attempt tears down converter state before the next one.
func (c *Converter) automate(ctx context.Context, a Automator, src, dst string, res *types.ConversionResult) {
	err := retry.Do(
		func() error {
			res.Attempts++
			if err := a.Convert(ctx, src, dst); err != nil {
				return err
			}
			if !looksLikePDF(dst) {
				return fmt.Errorf("converter output is not a PDF: %s", dst)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxAttempts)),
		retry.Delay(c.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("conversion attempt failed, retrying",
				"file", src,
				"attempt", n+1,
				"error", err,
			)
			a.Cleanup()
		}),
	)
	if err != nil {
		a.Cleanup()
		res.Reason = types.ReasonExhausted
		res.Err = err
	}
}
