package pdf

import (
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"binder/internal/types"
)

const (
	tocRowHeight   = 8.0
	tocIndentStep  = 8.0
	tocNumberWidth = 18.0
)

// newDoc creates an A4 document and returns it together with the font
// family to use and a text translator. With a configured TTF the family
// is the embedded font and the translator is the identity; otherwise the
// core Helvetica font is used with a cp1252 translator.
func (p *Processor) newDoc() (*gofpdf.Fpdf, string, func(string) string) {
	doc := gofpdf.New("P", "mm", "A4", "")
	if p.cfg.FontFile != "" {
		doc.AddUTF8Font("custom", "", p.cfg.FontFile)
		doc.AddUTF8Font("custom", "B", p.cfg.FontFile)
		doc.AddUTF8Font("custom", "I", p.cfg.FontFile)
		return doc, "custom", func(s string) string { return s }
	}
	return doc, "Helvetica", doc.UnicodeTranslatorFromDescriptor("")
}

// CreateTOC renders the table of contents into outPath. Entries deeper
// than level 1 are indented; page numbers are right-aligned. The page
// breaks automatically when the entry list outgrows one page, so the
// caller must re-measure the result with PageCount.
func (p *Processor) CreateTOC(entries []types.TocEntry, outPath string) error {
	doc, family, tr := p.newDoc()
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont(family, "B", 18)
	doc.CellFormat(0, 12, tr(p.cfg.TOCTitle), "", 1, "L", false, 0, "")
	doc.Ln(4)

	pageW, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()
	usable := pageW - left - right

	if len(entries) == 0 {
		doc.SetFont(family, "I", 11)
		doc.CellFormat(0, tocRowHeight, tr("(no sections)"), "", 1, "L", false, 0, "")
	}
	for _, e := range entries {
		indent := float64(e.Level-1) * tocIndentStep
		if e.Level == 1 {
			doc.SetFont(family, "B", 12)
		} else {
			doc.SetFont(family, "", 11)
		}
		doc.SetX(left + indent)
		doc.CellFormat(usable-indent-tocNumberWidth, tocRowHeight, tr(e.Title), "B", 0, "L", false, 0, "")
		doc.CellFormat(tocNumberWidth, tocRowHeight, strconv.Itoa(e.Page), "B", 1, "R", false, 0, "")
	}

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to write TOC page: %w", err)
	}
	return nil
}

// CreateSeparator renders a single page with the section title centered
// vertically and horizontally.
func (p *Processor) CreateSeparator(title, outPath string) error {
	doc, family, tr := p.newDoc()
	doc.AddPage()

	_, pageH := doc.GetPageSize()
	doc.SetY(pageH/2 - 12)
	doc.SetFont(family, "B", 24)
	doc.MultiCell(0, 12, tr(title), "", "C", false)

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("failed to write separator page for %q: %w", title, err)
	}
	return nil
}
