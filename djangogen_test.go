package djangogen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kxue43/djangogen/generator"
)

func TestCreateProjectValidatesFirst(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "site")

	opts := DefaultOptions()
	opts.Destination = dest
	opts.ProjectName = "my site"

	var entries []string

	err := CreateProject(context.Background(), opts, func(msg string) { entries = append(entries, msg) })

	assert.ErrorIs(t, err, generator.ErrInvalidIdentifier)
	assert.Len(t, entries, 1)
	assert.NoDirExists(t, dest)
}
