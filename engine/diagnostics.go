package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/brensch/antsbot/game"
)

// Diagnostics receives the error that ended a session. It must never
// write to the protocol output.
type Diagnostics interface {
	Report(err error, state *game.State)
}

// NopDiagnostics drops every report.
type NopDiagnostics struct{}

func (NopDiagnostics) Report(error, *game.State) {}

// FileDiagnostics writes one report file per failure into Dir.
type FileDiagnostics struct {
	Dir string
	Now func() time.Time
}

func (d FileDiagnostics) Report(err error, state *game.State) {
	_, _ = d.Write(err, state)
}

// Write creates error_<timestamp>.log and returns its path.
func (d FileDiagnostics) Write(reportErr error, state *game.State) (string, error) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create diagnostics dir: %w", err)
	}

	f, path, err := createReport(dir, "error_"+now().Format("2006-01-02_15.04.05"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	fmt.Fprintf(f, "error: %v\n\n", reportErr)
	if state != nil {
		fmt.Fprintf(f, "%s", state.Dump())
	} else {
		fmt.Fprintln(f, "state: not initialised (setup incomplete)")
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync diagnostics file: %w", err)
	}
	return path, nil
}

// createReport opens <base>.log, or <base>_N.log if reports from the
// same second already exist. Existing reports are never overwritten.
func createReport(dir, base string) (*os.File, string, error) {
	for i := 0; i < maxReportsPerSecond; i++ {
		name := base + ".log"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.log", base, i)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create diagnostics file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("create diagnostics file: more than %d reports for %s", maxReportsPerSecond, base)
}

const maxReportsPerSecond = 1000
