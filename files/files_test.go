package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxue43/djangogen/actionlog"
)

func TestDryRecordsWithoutWriting(t *testing.T) {
	root := t.TempDir()

	l := actionlog.New(nil)
	fsys := NewDry(OS{}, l)

	target := filepath.Join(root, "a", "b")

	require.NoError(t, fsys.MkdirAll(target, 0750))
	require.NoError(t, fsys.MkdirAll(filepath.Join(root, "a"), 0750))
	require.NoError(t, fsys.WriteFile(filepath.Join(target, "x.txt"), []byte("hello"), 0644))

	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err), "dry MkdirAll must not create anything")

	assert.Equal(t, []string{
		"[dry-run] would create directory: " + target,
		"[dry-run] would write " + filepath.Join(target, "x.txt") + " (5 bytes)",
	}, l.Entries())

	assert.True(t, IsDry(fsys))
	assert.False(t, IsDry(OS{}))
}

func TestDryMkdirAllSilentWhenPresent(t *testing.T) {
	l := actionlog.New(nil)
	fsys := NewDry(OS{}, l)

	require.NoError(t, fsys.MkdirAll(t.TempDir(), 0750))

	assert.Empty(t, l.Entries())
}

func TestExists(t *testing.T) {
	root := t.TempDir()

	ok, err := Exists(OS{}, root)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(OS{}, filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}
