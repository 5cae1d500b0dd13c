// Package actionlog records the ordered, human-readable account of what a scaffolding run did or
// plans to do. Every entry is forwarded to an optional progress callback and to an optional
// timestamped file sink.
package actionlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

type (
	// Func receives every entry as soon as it is appended.
	Func func(string)

	Log struct {
		id      string
		cb      Func
		sink    *log.Logger
		entries []string
		mux     sync.Mutex
	}
)

const defaultFileName = ".djangogen.log"

func New(cb Func) *Log {
	return &Log{id: uuid.New().String(), cb: cb}
}

// ID identifies the run this log belongs to. File sink lines carry its first eight characters
// so interleaved runs in one file can be told apart.
func (l *Log) ID() string {
	return l.id
}

// SetOutput mirrors entries to w, one timestamped line each. A nil w detaches the sink.
func (l *Log) SetOutput(w io.Writer) {
	l.mux.Lock()
	defer l.mux.Unlock()

	if w == nil {
		l.sink = nil

		return
	}

	l.sink = log.New(w, l.id[:8]+" ", log.LstdFlags|log.Lmsgprefix)
}

func (l *Log) Printf(format string, v ...any) {
	l.Print(fmt.Sprintf(format, v...))
}

func (l *Log) Print(msg string) {
	l.mux.Lock()

	l.entries = append(l.entries, msg)

	if l.sink != nil {
		l.sink.Print(msg)
	}

	cb := l.cb

	l.mux.Unlock()

	if cb != nil {
		cb(msg)
	}
}

func (l *Log) Entries() []string {
	l.mux.Lock()
	defer l.mux.Unlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)

	return out
}

func (l *Log) Len() int {
	l.mux.Lock()
	defer l.mux.Unlock()

	return len(l.entries)
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user home directory: %w", err)
	}

	return filepath.Join(home, defaultFileName), nil
}

// OpenFile opens path for appending, creating it and its parent directory when missing.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory for log file %q: %w", path, err)
	}

	fd, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}

	return fd, nil
}
