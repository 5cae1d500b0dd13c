package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxue43/djangogen/generator"
)

func TestExpandApps(t *testing.T) {
	var tests = []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "space separated",
			args:     []string{"out", "proj", "--apps", "users", "accounts", "--no-venv"},
			expected: []string{"out", "proj", "--apps=users,accounts", "--no-venv"},
		},
		{
			name:     "comma separated",
			args:     []string{"--apps", "users,accounts"},
			expected: []string{"--apps=users,accounts"},
		},
		{
			name:     "equals form untouched",
			args:     []string{"--apps=users", "--dry-run"},
			expected: []string{"--apps=users", "--dry-run"},
		},
		{
			name:     "no values",
			args:     []string{"--apps", "--dry-run"},
			expected: []string{"--apps", "--dry-run"},
		},
		{
			name:     "after double dash",
			args:     []string{"--", "--apps", "users"},
			expected: []string{"--", "--apps", "users"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandApps(tt.args))
		})
	}
}

func parse(t *testing.T, configPaths []string, args ...string) *CLI {
	t.Helper()

	var cli CLI

	parser, err := newParser(&cli, configPaths)
	require.NoError(t, err)

	_, err = parser.Parse(expandApps(args))
	require.NoError(t, err)

	return &cli
}

func TestDefaults(t *testing.T) {
	cli := parse(t, nil)

	assert.Equal(t, generator.Default(), cli.spec())
}

func TestFlagsToSpec(t *testing.T) {
	templates := t.TempDir()

	cli := parse(t, nil,
		"/work/site", "shop",
		"--apps", "users", "accounts",
		"--no-venv",
		"--init-git",
		"--dry-run",
		"--django-version", "4.2.6",
		"--python-exec", "/usr/bin/python3.12",
		"--no-templates",
		"--gitignore",
		"--template-dir", templates,
		"--verify-version",
	)

	assert.Equal(t, generator.Spec{
		Destination:     "/work/site",
		ProjectName:     "shop",
		Apps:            []string{"users", "accounts"},
		CreateVenv:      false,
		DjangoVersion:   "4.2.6",
		PythonExec:      "/usr/bin/python3.12",
		InitGit:         true,
		DryRun:          true,
		CreateTemplates: false,
		Gitignore:       true,
		TemplateDir:     templates,
		VerifyVersion:   true,
	}, cli.spec())
}

func TestConfigFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apps: [blog]\ninit_git: true\ndjango-version: \"5.0\"\n"), 0600))

	cli := parse(t, []string{path}, "--django-version", "4.2.6")

	spec := cli.spec()

	assert.Equal(t, []string{"blog"}, spec.Apps)
	assert.True(t, spec.InitGit)
	assert.Equal(t, "4.2.6", spec.DjangoVersion)
}

func TestGUIRequiresTerminal(t *testing.T) {
	original := interactive

	defer func() { interactive = original }()

	interactive = func() bool { return false }

	cli := &CLI{GUI: true, LogFile: filepath.Join(t.TempDir(), "djangogen.log")}

	assert.ErrorIs(t, cli.Run(context.Background()), ErrNotTerminal)
}
