// Package runner executes external commands on behalf of the scaffolder and records every
// invocation in the action log. In dry mode commands are only recorded.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

type (
	Logger interface {
		Printf(string, ...any)
	}

	Result struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}

	// Executor is the part of Runner that other packages depend on.
	Executor interface {
		Run(ctx context.Context, dir, name string, args ...string) (Result, error)
	}

	Runner struct {
		logger Logger
		dry    bool
	}

	// ExitError reports a command that ran but exited non-zero.
	ExitError struct {
		Command string
		Result
	}
)

var ErrStart = errors.New("failed to start command")

func New(logger Logger, dry bool) *Runner {
	return &Runner{logger: logger, dry: dry}
}

func (r *Runner) Dry() bool {
	return r.dry
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}

	if msg == "" {
		return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
	}

	return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.ExitCode, lastLine(msg))
}

// Format renders a command line the way it is shown in the action log.
func Format(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)

	for _, s := range append([]string{name}, args...) {
		if s == "" || strings.ContainsAny(s, " \t\"'") {
			s = fmt.Sprintf("%q", s)
		}

		parts = append(parts, s)
	}

	return strings.Join(parts, " ")
}

func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) (res Result, err error) {
	line := Format(name, args...)

	if r.dry {
		r.logger.Printf("[dry-run] would run: %s%s", line, cwdSuffix(dir))

		return Result{}, nil
	}

	r.logger.Printf("-> %s%s", line, cwdSuffix(dir))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	res = Result{Stdout: stdout.String(), Stderr: stderr.String()}

	for _, l := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(l) != "" {
			r.logger.Printf("   %s", strings.TrimRight(l, "\r"))
		}
	}

	var exitErr *exec.ExitError

	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()

		return res, &ExitError{Command: line, Result: res}
	} else if err != nil {
		res.ExitCode = -1

		return res, fmt.Errorf("%w %q: %w", ErrStart, line, err)
	}

	return res, nil
}

// Attach runs a command wired to the terminal's stdio, for interactive processes such as a
// development server.
func (r *Runner) Attach(ctx context.Context, dir, name string, args ...string) error {
	line := Format(name, args...)

	if r.dry {
		r.logger.Printf("[dry-run] would run: %s%s", line, cwdSuffix(dir))

		return nil
	}

	r.logger.Printf("-> %s%s", line, cwdSuffix(dir))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()

	var exitErr *exec.ExitError

	if errors.As(err, &exitErr) {
		return &ExitError{Command: line, Result: Result{ExitCode: exitErr.ExitCode()}}
	} else if err != nil {
		return fmt.Errorf("%w %q: %w", ErrStart, line, err)
	}

	return nil
}

func cwdSuffix(dir string) string {
	if dir == "" {
		return ""
	}

	return fmt.Sprintf(" (cwd=%s)", dir)
}

func lastLine(s string) string {
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}

	return s
}
