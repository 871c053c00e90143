package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Merge concatenates the fragment PDFs, in order, into outPath.
// Every fragment is validated up front so a broken file is reported with
// its own path instead of a merge-time parser error deep in pdfcpu.
func (p *Processor) Merge(fragments []string, outPath string) error {
	if len(fragments) == 0 {
		return errors.New("nothing to merge")
	}

	for _, frag := range fragments {
		info, err := os.Stat(frag)
		if err != nil {
			return fmt.Errorf("fragment missing: %w", err)
		}
		if info.Size() == 0 {
			return fmt.Errorf("fragment is empty: %s", frag)
		}
		if err := api.ValidateFile(frag, conf()); err != nil {
			return fmt.Errorf("fragment %s: %w", frag, err)
		}
	}

	if len(fragments) == 1 {
		return copyFile(fragments[0], outPath)
	}

	p.logger.Debug("merging fragments", "count", len(fragments), "out", outPath)
	if err := api.MergeCreateFile(fragments, outPath, false, conf()); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
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
