package pdf

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"binder/internal/atomicfile"
)

// Optimize rewrites the PDF in place with pdfcpu's optimizer, dropping
// the redundant objects a multi-source merge accumulates.
func (p *Processor) Optimize(path string) error {
	err := atomicfile.WriteFile(path, func(tmp string) error {
		return api.OptimizeFile(path, tmp, conf())
	})
	if err != nil {
		return fmt.Errorf("failed to optimize: %w", err)
	}
	return nil
}

// Compress shrinks the PDF in place with Ghostscript. It reports whether
// compression actually ran: an unconfigured executable or a failed run
// is logged and skipped, never fatal, and the original file survives.
func (p *Processor) Compress(ctx context.Context, path string) bool {
	if p.cfg.Ghostscript == "" {
		p.logger.Debug("compression skipped, no ghostscript configured")
		return false
	}
	if _, err := exec.LookPath(p.cfg.Ghostscript); err != nil {
		p.logger.Warn("compression skipped, ghostscript not found", "path", p.cfg.Ghostscript)
		return false
	}

	if p.cfg.CompressTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.CompressTimeout)
		defer cancel()
	}

	err := atomicfile.WriteFile(path, func(tmp string) error {
		cmd := exec.CommandContext(ctx, p.cfg.Ghostscript,
			"-sDEVICE=pdfwrite",
			"-dCompatibilityLevel=1.4",
			"-dPDFSETTINGS=/ebook",
			"-dNOPAUSE",
			"-dQUIET",
			"-dBATCH",
			"-sOutputFile="+tmp,
			path,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ghostscript failed: %w: %s", err, out)
		}
		// Never promote a result ghostscript mangled.
		return p.Validate(tmp)
	})
	if err != nil {
		p.logger.Warn("compression failed, keeping uncompressed output", "path", path, "error", err)
		return false
	}
	p.logger.Debug("compressed output", "path", path)
	return true
}
