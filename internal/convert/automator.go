package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Automator drives an external document converter. Convert must leave
// the produced PDF at dst. Cleanup tears down any stuck converter state
// between retry attempts and must be safe to call repeatedly, including
// when nothing is running.
type Automator interface {
	Convert(ctx context.Context, src, dst string) error
	Cleanup()
}

// execAutomator runs a configured argv template per file. The template's
// {input} and {outdir} placeholders are substituted with the source path
// and the fragment's directory.
type execAutomator struct {
	argv    []string
	timeout time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	proc *os.Process
}

// NewExecAutomator builds an Automator around an external command.
func NewExecAutomator(argv []string, timeout time.Duration, logger *slog.Logger) Automator {
	if logger == nil {
		logger = slog.Default()
	}
	return &execAutomator{argv: argv, timeout: timeout, logger: logger}
}

func (a *execAutomator) Convert(ctx context.Context, src, dst string) error {
	if len(a.argv) == 0 {
		return fmt.Errorf("converter command not configured")
	}
	outDir := filepath.Dir(dst)

	args := make([]string, 0, len(a.argv))
	for _, tok := range a.argv {
		tok = strings.ReplaceAll(tok, "{input}", src)
		tok = strings.ReplaceAll(tok, "{outdir}", outDir)
		args = append(args, tok)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := a.run(cmd)
	if err != nil {
		return fmt.Errorf("converter command failed: %w: %s", err, out)
	}

	// Office converters name the output after the source stem; move it
	// onto the fragment name the caller expects.
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	produced := filepath.Join(outDir, stem+".pdf")
	if produced == dst {
		return nil
	}
	if _, err := os.Stat(produced); err != nil {
		return fmt.Errorf("converter produced no output for %s: %w", src, err)
	}
	if err := os.Rename(produced, dst); err != nil {
		return fmt.Errorf("failed to move converter output: %w", err)
	}
	return nil
}

// run starts the command while tracking its process so Cleanup can kill
// a hung converter from another goroutine.
func (a *execAutomator) run(cmd *exec.Cmd) ([]byte, error) {
	var buf strings.Builder
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	a.mu.Lock()
	if err := cmd.Start(); err != nil {
		a.mu.Unlock()
		return nil, err
	}
	a.proc = cmd.Process
	a.mu.Unlock()

	err := cmd.Wait()

	a.mu.Lock()
	a.proc = nil
	a.mu.Unlock()

	return []byte(buf.String()), err
}

func (a *execAutomator) Cleanup() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.proc == nil {
		return
	}
	a.logger.Warn("killing stuck converter process", "pid", a.proc.Pid)
	_ = a.proc.Kill()
	a.proc = nil
}
