// Package convert turns individual source documents into single-file PDF
// fragments inside a job workspace. Office formats go through an external
// automation layer with bounded retries; images and PDFs are handled
// locally.
package convert

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind names the converter family responsible for a source file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindImage
	KindOffice
	KindLegacy
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindOffice:
		return "office"
	case KindLegacy:
		return "legacy"
	default:
		return "unsupported"
	}
}

var kindByExt = map[string]Kind{
	".pdf":  KindPDF,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".bmp":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".doc":  KindOffice,
	".docx": KindOffice,
	".xls":  KindOffice,
	".xlsx": KindOffice,
	".ppt":  KindOffice,
	".pptx": KindOffice,
	".rtf":  KindOffice,
	".jtd":  KindLegacy,
}

// Classify maps a file name to its converter kind by extension,
// case-insensitively.
func Classify(path string) Kind {
	return kindByExt[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether any converter handles the file.
func Supported(path string) bool {
	return Classify(path) != KindUnsupported
}

// IsScratchFile reports whether the name is an office-suite scratch
// artifact ("~$" or ".$" prefixed) left behind by an open editor.
func IsScratchFile(name string) bool {
	return strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".$")
}

// FragmentName derives the workspace file name for a source's PDF
// fragment. A short hash of the full source path keeps same-named files
// from different directories apart.
func FragmentName(src string) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = filepath.Clean(src)
	}
	sum := sha256.Sum256([]byte(abs))
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s.pdf", hex.EncodeToString(sum[:])[:8], stem)
}

var pdfMagic = []byte("%PDF-")

// looksLikePDF reports whether path starts with the PDF magic header and
// is non-empty. Cheap sanity gate on converter output.
func looksLikePDF(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, len(pdfMagic))
	if _, err := f.Read(buf); err != nil {
		return false
	}
	return string(buf) == string(pdfMagic)
}
