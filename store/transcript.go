// Package store persists what a bot saw during a game: a raw transcript
// of the server input and a parquet file of per-turn snapshots.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Transcript is an append-only copy of every line the server sent, one
// per line, exactly as received (minus the line ending). Feeding it back
// into the engine replays the game.
//
// Lines are buffered and synced on Flush and Close rather than per line:
// the bot has a turn time budget to respect.
type Transcript struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	w     *bufio.Writer
	lines int
}

func OpenTranscript(path string) (*Transcript, error) {
	if path == "" {
		return nil, fmt.Errorf("transcript path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return &Transcript{path: path, file: f, w: bufio.NewWriter(f)}, nil
}

func (t *Transcript) Path() string { return t.path }

func (t *Transcript) Lines() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lines
}

func (t *Transcript) Append(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return fmt.Errorf("transcript is closed")
	}
	if _, err := t.w.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	t.lines++
	return nil
}

func (t *Transcript) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *Transcript) flushLocked() error {
	if t.file == nil {
		return nil
	}
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("flush transcript: %w", err)
	}
	if err := t.file.Sync(); err != nil {
		return fmt.Errorf("sync transcript: %w", err)
	}
	return nil
}

func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	flushErr := t.flushLocked()
	err := t.file.Close()
	t.file = nil
	if flushErr != nil {
		return flushErr
	}
	return err
}

// ReadTranscript loads a transcript written by Transcript. A trailing
// partial line (the process died mid-write) is kept as-is.
func ReadTranscript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return lines, nil
}
