package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/kxue43/djangogen/actionlog"
	"github.com/kxue43/djangogen/config"
	"github.com/kxue43/djangogen/generator"
	"github.com/kxue43/djangogen/launch"
	"github.com/kxue43/djangogen/runner"
	"github.com/kxue43/djangogen/tui"
	"github.com/kxue43/djangogen/venv"
	"github.com/kxue43/djangogen/version"
)

type CLI struct {
	OutputDir     string           `arg:"" optional:"" name:"output_dir" default:"./my_django_project" help:"Directory the project is created in."`
	ProjectName   string           `arg:"" optional:"" name:"project_name" default:"mysite" help:"Name of the Django project package."`
	Apps          []string         `name:"apps" sep:"," placeholder:"APP" help:"Apps to create, space or comma separated."`
	NoVenv        bool             `name:"no-venv" help:"Use the interpreter as is instead of creating .venv and installing Django."`
	InitGit       bool             `name:"init-git" help:"Write a .gitignore and run git init in the project."`
	DryRun        bool             `name:"dry-run" help:"Print what would be done without doing it."`
	DjangoVersion string           `name:"django-version" placeholder:"X.Y[.Z]" help:"Exact Django release to install. Latest when omitted."`
	PythonExec    string           `name:"python-exec" placeholder:"PATH" help:"Interpreter used to create the environment. python3 or python from PATH when omitted."`
	GUI           bool             `name:"gui" help:"Fill in the options in an interactive form."`
	NoTemplates   bool             `name:"no-templates" help:"Skip default templates, static files and the home page route."`
	Gitignore     bool             `name:"gitignore" help:"Write a .gitignore even without --init-git."`
	TemplateDir   string           `name:"template-dir" type:"existingdir" placeholder:"DIR" help:"Copy templates/ and static/ from DIR before filling in defaults."`
	VerifyVersion bool             `name:"verify-version" help:"Check that --django-version is published on PyPI before installing it."`
	LogFile       string           `name:"log-file" type:"path" placeholder:"PATH" help:"Append the action log to PATH. Defaults to ~/.djangogen.log."`
	Config        kong.ConfigFlag  `name:"config" placeholder:"FILE" help:"Load flag defaults from a TOML or YAML file."`
	Version       kong.VersionFlag `name:"version" help:"Show version information and quit."`
	TUIDump       string           `name:"tui-dump" type:"path" hidden:"" help:"Dump every message the form receives to PATH."`
}

var (
	ErrNotTerminal = errors.New("--gui needs an interactive terminal")

	interactive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
)

func newParser(cli *CLI, configPaths []string, opts ...kong.Option) (*kong.Kong, error) {
	return kong.New(
		cli,
		append([]kong.Option{
			kong.Name("djangogen"),
			kong.Description("Generate a ready-to-run Django project."),
			kong.UsageOnError(),
			kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
			kong.Vars{"version": version.FromBuildInfo()},
			kong.Configuration(config.Loader, configPaths...),
		}, opts...)...,
	)
}

// expandApps rewrites "--apps a b c" into "--apps=a,b,c" so apps can be listed with spaces.
// Values are taken up to the next flag.
func expandApps(args []string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			out = append(out, args[i:]...)

			break
		}

		if arg != "--apps" {
			out = append(out, arg)

			continue
		}

		var apps []string

		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			apps = append(apps, args[i])
		}

		if len(apps) == 0 {
			out = append(out, arg)

			continue
		}

		out = append(out, "--apps="+strings.Join(apps, ","))
	}

	return out
}

func (c *CLI) spec() generator.Spec {
	return generator.Spec{
		Destination:     c.OutputDir,
		ProjectName:     c.ProjectName,
		Apps:            generator.ParseApps(strings.Join(c.Apps, ",")),
		CreateVenv:      !c.NoVenv,
		DjangoVersion:   c.DjangoVersion,
		PythonExec:      c.PythonExec,
		InitGit:         c.InitGit,
		DryRun:          c.DryRun,
		CreateTemplates: !c.NoTemplates,
		Gitignore:       c.Gitignore,
		TemplateDir:     c.TemplateDir,
		VerifyVersion:   c.VerifyVersion,
	}
}

// openLog returns the log file sink and its path. Failing to open it only costs the file copy
// of the log, so it is reported and the run continues.
func (c *CLI) openLog() (*os.File, string) {
	path := c.LogFile

	if path == "" {
		var err error

		if path, err = actionlog.DefaultPath(); err != nil {
			logger.Printf("warning: %s", err)

			return nil, ""
		}
	}

	fd, err := actionlog.OpenFile(path)
	if err != nil {
		logger.Printf("warning: %s", err)

		return nil, ""
	}

	return fd, path
}

func newLog(cb actionlog.Func, sink *os.File) *actionlog.Log {
	l := actionlog.New(cb)

	if sink != nil {
		l.SetOutput(sink)
	}

	return l
}

func (c *CLI) Run(ctx context.Context) error {
	spec := c.spec()

	sink, logPath := c.openLog()
	if sink != nil {
		defer func() { _ = sink.Close() }()
	}

	if c.GUI {
		return c.runForm(ctx, spec, sink, logPath)
	}

	l := newLog(func(msg string) { fmt.Println(msg) }, sink)

	if err := generator.New(l).Create(ctx, spec); err != nil {
		return err
	}

	return offerLaunch(ctx, spec, l)
}

func (c *CLI) runForm(ctx context.Context, spec generator.Spec, sink *os.File, logPath string) error {
	if !interactive() {
		return ErrNotTerminal
	}

	run := func(ctx context.Context, spec generator.Spec, cb actionlog.Func) error {
		return generator.New(newLog(cb, sink)).Create(ctx, spec)
	}

	opts := []tui.Option{tui.WithLogFile(logPath, launch.LogFile)}

	if c.TUIDump != "" {
		dump, err := os.OpenFile(filepath.Clean(c.TUIDump), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open form dump file %q: %w", c.TUIDump, err)
		}

		defer func() { _ = dump.Close() }()

		opts = append(opts, tui.WithDump(dump))
	}

	final, err := tea.NewProgram(tui.New(ctx, spec, run, opts...), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("form exited with error: %w", err)
	}

	m, ok := final.(tui.Model)
	if !ok {
		return nil
	}

	result, ok := m.Result()
	if !ok {
		return m.Err()
	}

	return offerLaunch(ctx, result, newLog(func(msg string) { fmt.Println(msg) }, sink))
}

// offerLaunch asks whether to open the new project in VS Code and whether to start the
// development server. It stays quiet for dry runs and when nobody is at the terminal.
func offerLaunch(ctx context.Context, spec generator.Spec, l *actionlog.Log) error {
	if spec.DryRun || !interactive() {
		return nil
	}

	dest, err := filepath.Abs(spec.Destination)
	if err != nil {
		return fmt.Errorf("failed to resolve destination %q: %w", spec.Destination, err)
	}

	var openEditor, serve bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Open the project in VS Code?").
				Affirmative("Yes").
				Negative("No").
				Value(&openEditor),
			huh.NewConfirm().
				Title("Start the development server?").
				Affirmative("Yes").
				Negative("No").
				Value(&serve),
		),
	).WithShowHelp(false)

	if err = form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}

		return fmt.Errorf("failed to ask about next steps: %w", err)
	}

	if openEditor {
		if err = launch.Editor(dest); err != nil {
			logger.Printf("warning: %s", err)
		}
	}

	if !serve {
		return nil
	}

	python := venv.EnvPython(filepath.Join(dest, venv.DirName))

	if !spec.CreateVenv {
		if python, err = venv.ResolveInterpreter(spec.PythonExec); err != nil {
			return err
		}
	}

	return launch.DevServer(ctx, runner.New(l, false), python, dest)
}
