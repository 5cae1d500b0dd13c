// Package files abstracts the filesystem calls the scaffolder makes so a dry run can reuse the
// exact same code paths while only recording the writes it would perform.
package files

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
)

type (
	Logger interface {
		Printf(string, ...any)
	}

	FS interface {
		MkdirAll(path string, perm os.FileMode) error
		ReadFile(path string) ([]byte, error)
		WriteFile(path string, data []byte, perm os.FileMode) error
		Stat(path string) (iofs.FileInfo, error)
		WalkDir(root string, fn iofs.WalkDirFunc) error
	}

	OS struct{}

	// Dry reads through to its base FS and logs every mutation instead of performing it. Each
	// planned directory is logged once.
	Dry struct {
		base    FS
		logger  Logger
		planned map[string]bool
	}
)

func (OS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Clean(path), perm)
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Clean(path))
}

func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filepath.Clean(path), data, perm)
}

func (OS) Stat(path string) (iofs.FileInfo, error) {
	return os.Stat(filepath.Clean(path))
}

func (OS) WalkDir(root string, fn iofs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

func NewDry(base FS, logger Logger) *Dry {
	return &Dry{base: base, logger: logger, planned: make(map[string]bool)}
}

func (d *Dry) MkdirAll(path string, _ os.FileMode) error {
	path = filepath.Clean(path)

	if d.planned[path] {
		return nil
	}

	if ok, err := Exists(d.base, path); err == nil && ok {
		return nil
	}

	for p := path; !d.planned[p]; p = filepath.Dir(p) {
		d.planned[p] = true

		if p == filepath.Dir(p) {
			break
		}
	}

	d.logger.Printf("[dry-run] would create directory: %s", path)

	return nil
}

func (d *Dry) ReadFile(path string) ([]byte, error) {
	return d.base.ReadFile(path)
}

func (d *Dry) WriteFile(path string, data []byte, _ os.FileMode) error {
	d.logger.Printf("[dry-run] would write %s (%d bytes)", path, len(data))

	return nil
}

func (d *Dry) Stat(path string) (iofs.FileInfo, error) {
	return d.base.Stat(path)
}

func (d *Dry) WalkDir(root string, fn iofs.WalkDirFunc) error {
	return d.base.WalkDir(root, fn)
}

func Exists(fsys FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

func IsDry(fsys FS) bool {
	_, ok := fsys.(*Dry)

	return ok
}
