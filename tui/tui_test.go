package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxue43/djangogen/actionlog"
	"github.com/kxue43/djangogen/generator"
)

func noRun(context.Context, generator.Spec, actionlog.Func) error {
	return nil
}

func press(t *testing.T, m Model, ks ...string) (Model, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd

	for _, k := range ks {
		var msg tea.KeyMsg

		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}

		next, c := m.Update(msg)

		var ok bool

		m, ok = next.(Model)
		require.True(t, ok)

		cmd = c
	}

	return m, cmd
}

func repeat(k string, n int) []string {
	out := make([]string, n)

	for i := range out {
		out[i] = k
	}

	return out
}

func TestNewPrefillsFromSpec(t *testing.T) {
	spec := generator.Default()
	spec.Apps = []string{"users", "blog"}
	spec.InitGit = true

	m := New(context.Background(), spec, noRun)

	assert.Equal(t, "./my_django_project", m.inputs[fieldDestination].Value())
	assert.Equal(t, "users,blog", m.inputs[fieldApps].Value())
	assert.True(t, m.toggles[toggleVenv].on)
	assert.True(t, m.toggles[toggleGit].on)
	assert.False(t, m.toggles[toggleDryRun].on)
	assert.Equal(t, spec, m.buildSpec())
}

func TestBuildSpecFromFields(t *testing.T) {
	base := generator.Default()
	base.VerifyVersion = true

	m := New(context.Background(), base, noRun)

	m.inputs[fieldDestination].SetValue("  /work/site ")
	m.inputs[fieldProjectName].SetValue("")
	m.inputs[fieldDjangoVersion].SetValue("4.2.6")
	m.inputs[fieldApps].SetValue("users, accounts,")

	m, _ = press(t, m, repeat("down", fieldCount+toggleVenv)...)
	m, _ = press(t, m, "x")
	m, _ = press(t, m, "down", "down", "down", "down", "enter")

	spec := m.buildSpec()

	assert.Equal(t, "/work/site", spec.Destination)
	assert.Equal(t, generator.DefaultProjectName, spec.ProjectName)
	assert.Equal(t, "4.2.6", spec.DjangoVersion)
	assert.Equal(t, []string{"users", "accounts"}, spec.Apps)
	assert.False(t, spec.CreateVenv)
	assert.True(t, spec.DryRun)
	assert.True(t, spec.VerifyVersion, "options without a field are carried over")
}

func TestEditField(t *testing.T) {
	m := New(context.Background(), generator.Default(), noRun)

	m, _ = press(t, m, "down", "down", "enter")
	require.True(t, m.editing)

	m, _ = press(t, m, "p", "y", "3")
	assert.Contains(t, m.View(), "finish input")

	m, _ = press(t, m, "enter")

	assert.False(t, m.editing)
	assert.Equal(t, "py3", m.inputs[fieldPythonExec].Value())
}

func TestSubmitConfirmAndRun(t *testing.T) {
	m := New(context.Background(), generator.Default(), noRun)

	m, _ = press(t, m, repeat("down", buttonIndex+3)...)
	require.Equal(t, buttonIndex, m.index)

	m, _ = press(t, m, "enter")

	require.True(t, m.confirming)
	assert.Contains(t, m.View(), "Create 'mysite' at ./my_django_project? y/n")

	m, _ = press(t, m, "n")

	assert.False(t, m.confirming)
	assert.Equal(t, statusReady, m.status)

	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "y")

	assert.NotNil(t, cmd)
	assert.True(t, m.running)
	assert.Equal(t, statusRunning, m.status)

	m, _ = press(t, m, "up")
	assert.Equal(t, buttonIndex, m.index, "navigation is locked while running")

	next, _ := m.Update(logLineMsg("-> python -m venv .venv"))
	m = next.(Model)

	next, _ = m.Update(doneMsg{})
	m = next.(Model)

	assert.Equal(t, statusDone, m.status)
	assert.Contains(t, m.View(), "-> python -m venv .venv")

	spec, ok := m.Result()

	assert.True(t, ok)
	assert.Equal(t, generator.DefaultProjectName, spec.ProjectName)
}

func TestSubmitRejectsInvalidSpec(t *testing.T) {
	m := New(context.Background(), generator.Default(), noRun)

	m.inputs[fieldProjectName].SetValue("1bad")

	m, _ = press(t, m, repeat("down", buttonIndex)...)
	m, _ = press(t, m, "enter")

	assert.False(t, m.confirming)
	assert.Equal(t, statusError, m.status)
	require.Len(t, m.lines, 1)
	assert.True(t, strings.HasPrefix(m.lines[0], "error: "))
}

func TestFailedRun(t *testing.T) {
	m := New(context.Background(), generator.Default(), noRun)

	next, _ := m.Update(doneMsg{err: errors.New("boom")})
	m = next.(Model)

	_, ok := m.Result()

	assert.False(t, ok)
	assert.Equal(t, statusError, m.status)
	assert.EqualError(t, m.Err(), "boom")
}

func TestRunSpecStreamsEvents(t *testing.T) {
	events := make(chan tea.Msg, 4)

	run := func(_ context.Context, spec generator.Spec, cb actionlog.Func) error {
		cb("first")
		cb("second " + spec.ProjectName)

		return nil
	}

	go runSpec(context.Background(), run, generator.Default(), events)()

	wait := waitForEvent(events)

	assert.Equal(t, logLineMsg("first"), wait())
	assert.Equal(t, logLineMsg("second mysite"), wait())
	assert.Equal(t, doneMsg{}, wait())
}

func TestOpenLog(t *testing.T) {
	var opened string

	m := New(context.Background(), generator.Default(), noRun, WithLogFile("/tmp/djangogen.log", func(path string) error {
		opened = path

		return nil
	}))

	_, cmd := press(t, m, "o")
	require.NotNil(t, cmd)

	assert.Nil(t, cmd())
	assert.Equal(t, "/tmp/djangogen.log", opened)

	m = New(context.Background(), generator.Default(), noRun)

	_, cmd = press(t, m, "o")
	require.NotNil(t, cmd)
	assert.Equal(t, noticeMsg("no log file is being written"), cmd())
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer

	m := New(context.Background(), generator.Default(), noRun, WithDump(&buf))

	_, _ = m.Update(logLineMsg("hello"))

	assert.Contains(t, buf.String(), "hello")
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), generator.Default(), noRun)

	_, cmd := press(t, m, "esc")
	require.NotNil(t, cmd)

	assert.Equal(t, tea.Quit(), cmd())
}
