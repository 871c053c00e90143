package job

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// workspacePrefix names job workspace directories under the scratch root.
const workspacePrefix = "job-"

// Workspace is the job-scoped temporary directory. All intermediate PDFs and
// converter scratch files live here; it is owned exclusively by the active
// job and removed on every exit path.
type Workspace struct {
	id     string
	dir    string
	logger *slog.Logger
}

// NewWorkspace creates a fresh workspace under the scratch root.
func NewWorkspace(scratchRoot string, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	dir := filepath.Join(scratchRoot, workspacePrefix+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job workspace: %w", err)
	}
	return &Workspace{id: id, dir: dir, logger: logger}, nil
}

// ID returns the job's unique identifier.
func (w *Workspace) ID() string { return w.id }

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace root.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("failed to remove job workspace", "dir", w.dir, "error", err)
		return
	}
	w.logger.Debug("removed job workspace", "dir", w.dir)
}

// SweepStale removes leftover job workspaces older than maxAge. Workspaces
// survive only when a previous process died before cleanup ran.
func SweepStale(scratchRoot string, maxAge time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(scratchRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read scratch root", "dir", scratchRoot, "error", err)
		}
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		stale := filepath.Join(scratchRoot, entry.Name())
		if err := os.RemoveAll(stale); err != nil {
			logger.Warn("failed to remove stale workspace", "dir", stale, "error", err)
			continue
		}
		logger.Info("removed stale workspace", "dir", stale)
	}
}
