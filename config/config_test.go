package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	Config        kong.ConfigFlag `name:"config"`
	Apps          []string        `name:"apps" sep:","`
	NoVenv        bool            `name:"no-venv"`
	DjangoVersion string          `name:"django-version"`
	InitGit       bool            `name:"init-git"`
}

func TestValues(t *testing.T) {
	var tests = []struct {
		name string
		doc  string
	}{
		{
			name: "toml",
			doc:  "apps = [\"users\", \"accounts\"]\nno-venv = true\ndjango_version = \"4.2.6\"\n",
		},
		{
			name: "yaml",
			doc:  "apps:\n  - users\n  - accounts\nno-venv: true\ndjango_version: \"4.2.6\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := Values(strings.NewReader(tt.doc))
			require.NoError(t, err)

			assert.Equal(t, map[string]string{
				"apps":           "users,accounts",
				"no-venv":        "true",
				"django_version": "4.2.6",
			}, values)
		})
	}
}

func TestValuesRejectsGarbage(t *testing.T) {
	_, err := Values(strings.NewReader("apps: [unclosed\n"))

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoaderWithKong(t *testing.T) {
	dir := t.TempDir()

	defaults := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(defaults, []byte("apps = [\"users\", \"accounts\"]\nno_venv = true\ndjango-version = \"4.2.6\"\n"), 0600))

	override := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(override, []byte("init-git: true\n"), 0600))

	var c cli

	parser, err := kong.New(&c, kong.Configuration(Loader, defaults, filepath.Join(dir, "missing.toml")))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"--django-version", "5.0", "--config", override})
	require.NoError(t, err)

	assert.Equal(t, []string{"users", "accounts"}, c.Apps)
	assert.True(t, c.NoVenv)
	assert.True(t, c.InitGit)
	assert.Equal(t, "5.0", c.DjangoVersion, "command line flags win over config files")
}

func TestDefaultPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME is only honored on Linux")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, []string{"/tmp/xdg/djangogen/config.toml", "/tmp/xdg/djangogen/config.yaml"}, DefaultPaths())
}
