// Package scaffold lays out a Django project on disk: it drives startproject and startapp, fills
// in default templates and static files, and patches settings.py and urls.py so the generated
// apps are wired in.
package scaffold

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kxue43/djangogen/files"
	"github.com/kxue43/djangogen/runner"
)

type (
	Logger interface {
		Printf(string, ...any)
	}

	// Project names the tree being generated. Root is the directory holding manage.py.
	Project struct {
		Root string
		Name string
		Apps []string
	}

	Writer struct {
		logger   Logger
		executor runner.Executor
		fsys     files.FS
	}

	WriteHook func(io.Writer) error
)

var (
	ErrStartProject = errors.New("failed to run startproject")
	ErrStartApp     = errors.New("failed to run startapp")
)

func New(logger Logger, executor runner.Executor, fsys files.FS) *Writer {
	return &Writer{logger: logger, executor: executor, fsys: fsys}
}

func (p Project) SettingsPath() string {
	return filepath.Join(p.Root, p.Name, "settings.py")
}

func (p Project) URLsPath() string {
	return filepath.Join(p.Root, p.Name, "urls.py")
}

// CreateProjectTree runs startproject in Root unless manage.py is already there, then startapp
// for every app whose directory does not exist yet.
func (w *Writer) CreateProjectTree(ctx context.Context, python string, p Project) error {
	if err := w.fsys.MkdirAll(p.Root, 0750); err != nil {
		return fmt.Errorf("failed to create project directory %q: %w", p.Root, err)
	}

	ok, err := files.Exists(w.fsys, filepath.Join(p.Root, "manage.py"))
	if err != nil {
		return fmt.Errorf("failed to inspect %q: %w", p.Root, err)
	}

	if ok {
		w.logger.Printf("skipped project %s: manage.py already exists", p.Name)
	} else {
		w.logger.Printf("Creating Django project %s", p.Name)

		if _, err = w.executor.Run(ctx, p.Root, python, "-m", "django", "startproject", p.Name, "."); err != nil {
			return fmt.Errorf("%w %s: %w", ErrStartProject, p.Name, err)
		}
	}

	for _, app := range p.Apps {
		ok, err = files.Exists(w.fsys, filepath.Join(p.Root, app))
		if err != nil {
			return fmt.Errorf("failed to inspect app directory %q: %w", app, err)
		}

		if ok {
			w.logger.Printf("skipped app %s: directory already exists", app)

			continue
		}

		w.logger.Printf("Creating app %s", app)

		if _, err = w.executor.Run(ctx, p.Root, python, "manage.py", "startapp", app); err != nil {
			return fmt.Errorf("%w %s: %w", ErrStartApp, app, err)
		}
	}

	return nil
}

// WriteGitignore writes a Python and Django .gitignore into root unless one exists.
func (w *Writer) WriteGitignore(root string) error {
	created, err := w.writeIfAbsent(filepath.Join(root, ".gitignore"), "gitignore.tmplt", nil)
	if err != nil {
		return err
	}

	if created {
		w.report("created .gitignore")
	} else {
		w.logger.Printf("skipped .gitignore: already exists")
	}

	return nil
}

// WriteRequirements records the frozen package list of the environment in requirements.txt.
func (w *Writer) WriteRequirements(root, frozen string) error {
	path := filepath.Join(root, "requirements.txt")

	err := w.writeFile(path, func(fd io.Writer) error {
		_, err := io.WriteString(fd, frozen)

		return err
	})
	if err != nil {
		return err
	}

	w.report("wrote %s", path)

	return nil
}

// report logs an outcome that a dry run has already announced through its FS.
func (w *Writer) report(format string, v ...any) {
	if !files.IsDry(w.fsys) {
		w.logger.Printf(format, v...)
	}
}

// writeFile renders hook into memory first so that a failing hook never leaves a partial file.
func (w *Writer) writeFile(path string, hook WriteHook) error {
	var buf bytes.Buffer

	if err := hook(&buf); err != nil {
		return fmt.Errorf("failed to render %q: %w", path, err)
	}

	if err := w.fsys.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}

	if err := w.fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}

	return nil
}

func (w *Writer) writeIfAbsent(path, name string, data any) (created bool, err error) {
	ok, err := files.Exists(w.fsys, path)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %q: %w", path, err)
	}

	if ok {
		return false, nil
	}

	if err = w.writeFile(path, render(name, data)); err != nil {
		return false, err
	}

	return true, nil
}

func (w *Writer) readOptional(path string) (src string, found bool, err error) {
	contents, err := w.fsys.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", path, err)
	}

	return string(contents), true, nil
}
