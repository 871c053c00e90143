// Package atomicfile provides crash-safe replace-on-success file mutation.
//
// A producer writes the new content to a scratch path next to the target;
// only after the producer returns successfully is the scratch file promoted
// over the target with an atomic rename. The target is therefore always
// observed either fully in its prior state or fully in its new state.
package atomicfile

import (
	"fmt"
	"log/slog"
	"os"
)

// TempSuffix is appended to the target path to form the scratch path.
// Keeping the scratch file in the same directory guarantees the final
// rename stays on one filesystem.
const TempSuffix = ".tmp"

// WriteFile runs producer against a scratch path and, on success, atomically
// replaces target with the produced file. On producer failure the scratch
// file is removed and the error returned.
//
// Cleanup is gated on a flag, not on probing the filesystem, so there is no
// window between checking for the scratch file and removing it.
func WriteFile(target string, producer func(tmp string) error) error {
	tmp := target + TempSuffix
	needsCleanup := false

	defer func() {
		if !needsCleanup {
			return
		}
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove scratch file", "path", tmp, "error", err)
		}
	}()

	needsCleanup = true
	if err := producer(tmp); err != nil {
		return fmt.Errorf("atomic write of %s: %w", target, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("atomic write of %s: promote: %w", target, err)
	}
	needsCleanup = false
	return nil
}
