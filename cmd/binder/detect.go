package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"binder/internal/structure"
)

var detectCmd = &cobra.Command{
	Use:   "detect <directory>",
	Short: "Classify a directory's folder layout without merging",
	Long: `Inspect a directory tree and report which folder layout it looks like,
with the detection confidence and the evidence behind it. Useful for
checking what "binder merge" would do before running it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := getConfig(logger)
		if err != nil {
			return err
		}

		d := &structure.Detector{
			Threshold:        cfg.Detect.ConfidenceThreshold,
			CategoryKeywords: cfg.Detect.CategoryKeywords,
			CoverKeywords:    cfg.Collect.CoverKeywords,
			Logger:           logger,
		}
		fs, err := d.Detect(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Variant:    %s\n", fs.Variant)
		fmt.Printf("Confidence: %.2f\n", fs.Confidence)
		for k, v := range fs.Evidence {
			fmt.Printf("  %s: %v\n", k, v)
		}
		for _, issue := range fs.Issues {
			fmt.Printf("note: %s\n", issue)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
