// Package launch opens a freshly generated project: in the editor, under the development server,
// or by showing the run's log file.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/pkg/browser"
)

// Attacher runs a command wired to the terminal.
type Attacher interface {
	Attach(ctx context.Context, dir, name string, args ...string) error
}

const editorCommand = "code"

var (
	ErrEditorNotFound = errors.New("VS Code command line launcher not found")

	lookPath = exec.LookPath
	openFile = browser.OpenFile
	detach   = func(name string, args ...string) error {
		cmd := exec.Command(name, args...)

		if err := cmd.Start(); err != nil {
			return err
		}

		return cmd.Process.Release()
	}
)

// Editor opens dir in VS Code without waiting for it to exit.
func Editor(dir string) error {
	path, err := lookPath(editorCommand)
	if err != nil {
		return fmt.Errorf("%w: %q is not on PATH: %w", ErrEditorNotFound, editorCommand, err)
	}

	if err = detach(path, dir); err != nil {
		return fmt.Errorf("failed to open %q in VS Code: %w", dir, err)
	}

	return nil
}

// DevServer runs manage.py runserver in dir until it exits or ctx is cancelled.
func DevServer(ctx context.Context, r Attacher, python, dir string) error {
	if err := r.Attach(ctx, dir, python, "manage.py", "runserver"); err != nil {
		return fmt.Errorf("development server stopped: %w", err)
	}

	return nil
}

// LogFile shows path with the desktop's default handler.
func LogFile(path string) error {
	if err := openFile(path); err != nil {
		return fmt.Errorf("failed to open log file %q: %w", path, err)
	}

	return nil
}
