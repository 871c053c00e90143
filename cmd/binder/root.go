package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"binder/internal/config"
	"binder/internal/home"
	"binder/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "binder",
	Short: "Merge a directory of mixed documents into one navigable PDF",
	Long: `Binder walks a directory tree of office documents, images and PDFs and
merges everything into a single PDF with a cover, a generated table of
contents, section separator pages, page numbers and bookmarks.

Section ordering follows locale-aware name ordering; the folder layout
(flat sections or category/section nesting) is detected automatically
and can be forced with --type.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.binder/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "binder home directory (default: ~/.binder)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// getHome resolves the home directory and makes sure it exists.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}
	return h, nil
}

// getConfig loads configuration via the manager, falling back to the
// defaults when no config file exists yet. The config file is watched
// for the lifetime of the process; a running job keeps the settings it
// started with, so an edit mid-merge only takes effect on the next run.
func getConfig(logger *slog.Logger) (*config.Config, error) {
	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	mgr.OnChange(func(*config.Config) {
		logger.Info("config file changed on disk, new settings apply to the next run")
	})
	mgr.WatchConfig()
	return mgr.Get(), nil
}
