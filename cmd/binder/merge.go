package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"binder/internal/job"
	"binder/internal/orchestrator"
	"binder/internal/types"
)

var (
	mergeOutput   string
	mergeType     string
	mergeTitle    string
	mergeCompress bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <directory>",
	Short: "Merge a directory tree into one PDF",
	Long: `Merge every supported document under the given directory into a single
PDF, in locale-aware name order, with a table of contents, separator
pages, page numbers and bookmarks.

A root-level file whose name matches a cover keyword becomes the cover.
Unsupported and unconvertible files are skipped with a warning; a
section where nothing converts aborts the run.

Examples:
  binder merge ./board-papers
  binder merge ./board-papers -o binder.pdf --compress
  binder merge ./board-papers --type three-level --title "Q3 Binder"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := getConfig(logger)
		if err != nil {
			return err
		}
		h, err := getHome()
		if err != nil {
			return err
		}

		root := args[0]
		out := mergeOutput
		if out == "" {
			out = filepath.Base(filepath.Clean(root)) + ".pdf"
		}

		o := orchestrator.New(cfg, h.ScratchPath(), logger)
		outcome, err := o.Run(cmd.Context(), job.Request{
			Root:       root,
			OutputPath: out,
			PlanType:   types.ParseVariant(mergeType),
			CoverTitle: mergeTitle,
			Compress:   mergeCompress,
			Progress:   job.NewLogProgress(logger),
		})
		if errors.Is(err, job.ErrCancelled) {
			fmt.Println("Cancelled.")
			return err
		}
		if err != nil {
			return err
		}

		for _, w := range outcome.Warnings {
			fmt.Printf("warning: %s: %s %s\n", w.Kind, w.Path, w.Msg)
		}
		fmt.Printf("Wrote %s\n", outcome.OutputPath)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output PDF path (default: <directory>.pdf)")
	mergeCmd.Flags().StringVar(&mergeType, "type", "", "folder layout: two-level or three-level (default: auto-detect)")
	mergeCmd.Flags().StringVar(&mergeTitle, "title", "", "generate a cover page with this title when the tree has no cover file")
	mergeCmd.Flags().BoolVar(&mergeCompress, "compress", false, "compress the final PDF with ghostscript")

	rootCmd.AddCommand(mergeCmd)
}
