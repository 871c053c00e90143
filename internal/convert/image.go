package convert

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// imageToPDF places the image centered on an A4 page. JPEG and PNG go to
// pdfcpu directly; BMP and TIFF are decoded, flattened onto a white
// background, and re-encoded as PNG first.
func (c *Converter) imageToPDF(src, dst, workDir string) error {
	importPath := src
	switch strings.ToLower(filepath.Ext(src)) {
	case ".bmp", ".tif", ".tiff":
		normalized, err := normalizeImage(src, workDir)
		if err != nil {
			return err
		}
		defer os.Remove(normalized)
		importPath = normalized
	}

	imp, err := api.Import("form:A4, pos:c, sc:1.0 rel", pdftypes.POINTS)
	if err != nil {
		return fmt.Errorf("bad import description: %w", err)
	}
	if err := api.ImportImagesFile([]string{importPath}, dst, imp, relaxedConf()); err != nil {
		return fmt.Errorf("failed to place image on page: %w", err)
	}
	return nil
}

// normalizeImage decodes src and writes it back out as PNG with any
// transparency flattened onto white.
func normalizeImage(src, workDir string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(src)) {
	case ".bmp":
		img, err = bmp.Decode(f)
	case ".tif", ".tiff":
		img, err = tiff.Decode(f)
	default:
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return "", fmt.Errorf("failed to decode image %s: %w", src, err)
	}

	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	out, err := os.CreateTemp(workDir, "img-*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(out, flat); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to re-encode image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
