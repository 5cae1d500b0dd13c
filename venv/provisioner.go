// Package venv provisions the isolated Python environment a generated project runs in and
// installs Django into it.
package venv

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kxue43/djangogen/files"
	"github.com/kxue43/djangogen/runner"
)

type (
	Logger interface {
		Printf(string, ...any)
	}

	Provisioner struct {
		logger      Logger
		executor    runner.Executor
		fsys        files.FS
		interpreter string
	}

	InstallKind byte

	// InstallError classifies an installer failure so callers can tell a bad pin from an
	// unreachable index.
	InstallError struct {
		Kind    InstallKind
		Package string
		Err     error
	}
)

const (
	KindOther InstallKind = iota
	KindNetwork
	KindNotFound

	// DirName is where the environment is created, relative to the project root.
	DirName = ".venv"
)

var (
	ErrInterpreterNotFound = errors.New("python interpreter not found")
	ErrEnvCreate           = errors.New("failed to create virtual environment")
	ErrInstall             = errors.New("failed to install package")
	ErrNetwork             = errors.New("package index unreachable")
	ErrVersionNotFound     = errors.New("requested version not found")

	lookPath = exec.LookPath

	notFoundMarkers = []string{
		"No matching distribution found",
		"Could not find a version that satisfies",
	}

	networkMarkers = []string{
		"Could not fetch URL",
		"NewConnectionError",
		"Network is unreachable",
		"Temporary failure in name resolution",
		"Max retries exceeded",
		"Connection refused",
		"timed out",
	}
)

func New(logger Logger, executor runner.Executor, fsys files.FS, interpreter string) *Provisioner {
	return &Provisioner{logger: logger, executor: executor, fsys: fsys, interpreter: interpreter}
}

// ResolveInterpreter returns pythonExec when given (it must exist), otherwise the first of
// python3 and python found on PATH.
func ResolveInterpreter(pythonExec string) (string, error) {
	if pythonExec != "" {
		if _, err := lookPath(pythonExec); err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrInterpreterNotFound, pythonExec, err)
		}

		return pythonExec, nil
	}

	for _, name := range []string{"python3", "python"} {
		if path, err := lookPath(name); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: neither python3 nor python is on PATH", ErrInterpreterNotFound)
}

// EnvPython is the interpreter inside the environment rooted at envDir.
func EnvPython(envDir string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(envDir, "Scripts", "python.exe")
	}

	return filepath.Join(envDir, "bin", "python")
}

// EnsureEnv creates an environment at envDir unless one is already there and returns its
// interpreter.
func (p *Provisioner) EnsureEnv(ctx context.Context, envDir string) (python string, err error) {
	python = EnvPython(envDir)

	ok, err := files.Exists(p.fsys, filepath.Join(envDir, "pyvenv.cfg"))
	if err != nil {
		return "", fmt.Errorf("%w: failed to inspect %q: %w", ErrEnvCreate, envDir, err)
	}

	if ok {
		p.logger.Printf("%s already exists, skipping creation", envDir)

		return python, nil
	}

	p.logger.Printf("Creating virtual environment at %s", envDir)

	if _, err = p.executor.Run(ctx, "", p.interpreter, "-m", "venv", envDir); err != nil {
		return "", fmt.Errorf("%w at %q: %w", ErrEnvCreate, envDir, err)
	}

	return python, nil
}

// InstallFramework installs Django into the environment owning python, pinned to version when
// it is set.
func (p *Provisioner) InstallFramework(ctx context.Context, python string, version Version) error {
	p.logger.Printf("Installing Django (%s)", describe(version))

	if _, err := p.executor.Run(ctx, "", python, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return classify("pip", err)
	}

	requirement := "django"
	if version.Set() {
		requirement = "django==" + version.String()
	}

	if _, err := p.executor.Run(ctx, "", python, "-m", "pip", "install", requirement); err != nil {
		return classify(requirement, err)
	}

	p.logger.Printf("Django ready")

	return nil
}

// Freeze returns the pinned package list of the environment owning python.
func (p *Provisioner) Freeze(ctx context.Context, python string) (string, error) {
	res, err := p.executor.Run(ctx, "", python, "-m", "pip", "freeze")
	if err != nil {
		return "", fmt.Errorf("failed to list installed packages: %w", err)
	}

	return res.Stdout, nil
}

func describe(version Version) string {
	if version.Set() {
		return "pinned to " + version.String()
	}

	return "latest"
}

func classify(pkg string, err error) error {
	var exitErr *runner.ExitError

	if !errors.As(err, &exitErr) {
		return &InstallError{Kind: KindOther, Package: pkg, Err: err}
	}

	output := exitErr.Stderr + exitErr.Stdout

	for _, marker := range notFoundMarkers {
		if strings.Contains(output, marker) {
			return &InstallError{Kind: KindNotFound, Package: pkg, Err: err}
		}
	}

	for _, marker := range networkMarkers {
		if strings.Contains(output, marker) {
			return &InstallError{Kind: KindNetwork, Package: pkg, Err: err}
		}
	}

	return &InstallError{Kind: KindOther, Package: pkg, Err: err}
}

func (e *InstallError) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("%s while installing %s: %s", ErrNetwork, e.Package, e.Err)
	case KindNotFound:
		return fmt.Sprintf("%s: %s: %s", ErrVersionNotFound, e.Package, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s", ErrInstall, e.Package, e.Err)
	}
}

func (e *InstallError) Unwrap() []error {
	switch e.Kind {
	case KindNetwork:
		return []error{ErrInstall, ErrNetwork, e.Err}
	case KindNotFound:
		return []error{ErrInstall, ErrVersionNotFound, e.Err}
	default:
		return []error{ErrInstall, e.Err}
	}
}
