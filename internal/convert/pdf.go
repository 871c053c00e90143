package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func relaxedConf() *model.Configuration {
	c := model.NewDefaultConfiguration()
	c.ValidationMode = model.ValidationRelaxed
	return c
}

// copyPDF validates a source PDF and copies it into the workspace as its
// own fragment. Corrupt sources are rejected here rather than at merge
// time so the failure names the source file.
func (c *Converter) copyPDF(src, dst string) error {
	if err := api.ValidateFile(src, relaxedConf()); err != nil {
		return fmt.Errorf("source PDF does not validate: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
