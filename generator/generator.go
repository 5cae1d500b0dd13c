// Package generator runs a complete scaffolding pass: it validates a Spec, provisions the
// environment, lays out the project and wires the apps in, recording every step in an
// actionlog.Log.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kxue43/djangogen/actionlog"
	"github.com/kxue43/djangogen/files"
	"github.com/kxue43/djangogen/runner"
	"github.com/kxue43/djangogen/sanitize"
	"github.com/kxue43/djangogen/scaffold"
	"github.com/kxue43/djangogen/venv"
)

type (
	// Verifier confirms a release exists before anything is installed.
	Verifier interface {
		Verify(ctx context.Context, project string, version venv.Version) error
	}

	Generator struct {
		log      *actionlog.Log
		executor runner.Executor
		fsys     files.FS
		index    Verifier
		resolve  func(string) (string, error)
	}

	Option func(*Generator)
)

const (
	MsgSuccess = "Django project created successfully"
	MsgDryRun  = "dry-run complete"

	indexTimeout = 10 * time.Second
)

var ErrGitInit = errors.New("failed to initialize git repository")

func WithExecutor(executor runner.Executor) Option {
	return func(g *Generator) { g.executor = executor }
}

func WithFS(fsys files.FS) Option {
	return func(g *Generator) { g.fsys = fsys }
}

func WithVerifier(index Verifier) Option {
	return func(g *Generator) { g.index = index }
}

// WithInterpreterResolver replaces venv.ResolveInterpreter.
func WithInterpreterResolver(fn func(string) (string, error)) Option {
	return func(g *Generator) { g.resolve = fn }
}

func New(log *actionlog.Log, opts ...Option) *Generator {
	g := &Generator{
		log:      log,
		executor: runner.New(log, false),
		fsys:     files.OS{},
		index:    venv.NewIndex(indexTimeout),
		resolve:  venv.ResolveInterpreter,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// CreateProject runs spec with a fresh log whose entries are passed to cb as they happen.
func CreateProject(ctx context.Context, spec Spec, cb actionlog.Func) error {
	return New(actionlog.New(cb)).Create(ctx, spec)
}

// Create performs the run described by spec. It stops at the first failure, leaving completed
// steps in place, and logs the failure as "error: <msg>".
func (g *Generator) Create(ctx context.Context, spec Spec) (err error) {
	defer func() {
		if err != nil {
			g.log.Printf("error: %s", err)
		}
	}()

	version, err := spec.Validate()
	if err != nil {
		return err
	}

	dest, err := filepath.Abs(spec.Destination)
	if err != nil {
		return fmt.Errorf("failed to resolve destination %q: %w", spec.Destination, err)
	}

	executor, fsys := g.executor, g.fsys

	if spec.DryRun {
		executor, fsys = runner.New(g.log, true), files.NewDry(g.fsys, g.log)

		g.log.Printf("[dry-run] planning %s in %s; nothing will be changed", spec.ProjectName, dest)
	}

	python, err := g.resolve(spec.PythonExec)
	if err != nil {
		if !spec.DryRun {
			return err
		}

		python = "python3"

		g.log.Printf("warning: %s; assuming %s", err, python)
	}

	provisioner := venv.New(g.log, executor, fsys, python)

	if spec.CreateVenv {
		if python, err = g.provision(ctx, provisioner, filepath.Join(dest, venv.DirName), version, spec); err != nil {
			return err
		}
	} else {
		g.log.Printf("Skipping virtual environment; using %s as is", python)
	}

	project := scaffold.Project{Root: dest, Name: spec.ProjectName, Apps: spec.Apps}
	w := scaffold.New(g.log, executor, fsys)

	if err = w.CreateProjectTree(ctx, python, project); err != nil {
		return err
	}

	if spec.CreateTemplates {
		if err = w.WriteTemplates(project, spec.TemplateDir); err != nil {
			return err
		}

		if _, err = sanitize.Templates(fsys, dest, func(path string) { g.log.Printf("sanitized %s", path) }); err != nil {
			return err
		}
	}

	if err = w.WriteAppFiles(project); err != nil {
		return err
	}

	if err = w.PatchSettings(project.SettingsPath(), spec.Apps); err != nil {
		return err
	}

	if err = w.PatchURLs(project.URLsPath(), spec.Apps, spec.CreateTemplates); err != nil {
		return err
	}

	if spec.CreateVenv {
		frozen, ferr := provisioner.Freeze(ctx, python)
		if ferr != nil {
			g.log.Printf("warning: requirements.txt not written: %s", ferr)
		} else if err = w.WriteRequirements(dest, frozen); err != nil {
			return err
		}
	}

	if err = g.finishRepository(ctx, executor, fsys, w, dest, spec); err != nil {
		return err
	}

	if spec.DryRun {
		g.log.Print(MsgDryRun)
	} else {
		g.log.Print(MsgSuccess)
	}

	return nil
}

func (g *Generator) provision(ctx context.Context, p *venv.Provisioner, envDir string, version venv.Version, spec Spec) (python string, err error) {
	if python, err = p.EnsureEnv(ctx, envDir); err != nil {
		return "", err
	}

	if spec.VerifyVersion && version.Set() {
		if spec.DryRun {
			g.log.Printf("[dry-run] would check the package index for django %s", version)
		} else {
			g.log.Printf("Checking the package index for django %s", version)

			if err = g.index.Verify(ctx, "django", version); err != nil {
				return "", err
			}
		}
	}

	if err = p.InstallFramework(ctx, python, version); err != nil {
		return "", err
	}

	return python, nil
}

func (g *Generator) finishRepository(ctx context.Context, executor runner.Executor, fsys files.FS, w *scaffold.Writer, dest string, spec Spec) error {
	if spec.Gitignore || spec.InitGit {
		if err := w.WriteGitignore(dest); err != nil {
			return err
		}
	}

	if !spec.InitGit {
		return nil
	}

	ok, err := files.Exists(fsys, filepath.Join(dest, ".git"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGitInit, err)
	}

	if ok {
		g.log.Printf("skipped git init: %s is already a repository", dest)

		return nil
	}

	if _, err = executor.Run(ctx, dest, "git", "init"); err != nil {
		return fmt.Errorf("%w in %q: %w", ErrGitInit, dest, err)
	}

	return nil
}
