package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"binder/internal/atomicfile"
)

// AddPageNumbers stamps the physical page number at the bottom center of
// every page from startPage onward, in place. Pages before startPage
// (cover and TOC) stay clean. The file is replaced atomically so a
// failed stamping run leaves it untouched.
func (p *Processor) AddPageNumbers(path string, startPage int) error {
	if startPage < 1 {
		startPage = 1
	}
	total, err := p.PageCount(path)
	if err != nil {
		return err
	}
	if startPage > total {
		p.logger.Debug("no pages to number", "path", path, "start", startPage, "total", total)
		return nil
	}

	desc := fmt.Sprintf("font:Helvetica, points:%d, pos:bc, off:0 %d, scale:1 abs, rot:0, fillcol:#000000",
		p.cfg.NumberPoints, p.cfg.NumberOffsetY)
	selected := []string{fmt.Sprintf("%d-", startPage)}

	err = atomicfile.WriteFile(path, func(tmp string) error {
		return api.AddTextWatermarksFile(path, tmp, selected, true, "%p", desc, conf())
	})
	if err != nil {
		return fmt.Errorf("failed to stamp page numbers: %w", err)
	}
	return nil
}
