// Package djangogen generates ready-to-run Django projects. CreateProject is the library entry
// point; the djangogen command in cmd/djangogen wraps it with a CLI and a terminal form.
package djangogen

import (
	"context"

	"github.com/kxue43/djangogen/actionlog"
	"github.com/kxue43/djangogen/generator"
)

// Options describes one run. See generator.Spec.
type Options = generator.Spec

// CreateProject generates the project described by opts, passing every log entry to cb.
func CreateProject(ctx context.Context, opts Options, cb actionlog.Func) error {
	return generator.CreateProject(ctx, opts, cb)
}

// DefaultOptions mirrors the defaults of the command line.
func DefaultOptions() Options {
	return generator.Default()
}
