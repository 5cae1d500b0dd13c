// Package tui is the terminal form for generating a project: text fields and toggles for every
// option, a confirmation step and a live log of the run.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/kxue43/djangogen/actionlog"
	"github.com/kxue43/djangogen/generator"
)

type (
	// RunFunc performs a run, passing every log entry to cb as it is recorded.
	RunFunc func(ctx context.Context, spec generator.Spec, cb actionlog.Func) error

	Option func(*Model)

	toggle struct {
		label string
		on    bool
	}

	Model struct {
		ctx        context.Context
		run        RunFunc
		open       func(string) error
		dump       io.Writer
		err        error
		events     chan tea.Msg
		help       help.Model
		logPane    viewport.Model
		inputs     []textinput.Model
		toggles    []toggle
		lines      []string
		logPath    string
		prompt     string
		status     string
		base       generator.Spec
		spec       generator.Spec
		index      int
		editing    bool
		confirming bool
		running    bool
		succeeded  bool
	}

	logLineMsg string

	noticeMsg string

	doneMsg struct {
		err error
	}
)

const (
	fieldDestination = iota
	fieldProjectName
	fieldPythonExec
	fieldDjangoVersion
	fieldApps
	fieldTemplateDir
	fieldCount
)

const (
	toggleVenv = iota
	toggleTemplates
	toggleGit
	toggleGitignore
	toggleDryRun
	toggleCount
)

const (
	buttonIndex = fieldCount + toggleCount

	statusReady   = "Ready"
	statusRunning = "Running..."
	statusDone    = "Done."
	statusError   = "Error."

	logPaneHeight = 10
	labelWidth    = 16
)

var (
	fieldLabels = [fieldCount]string{
		fieldDestination:   "Folder",
		fieldProjectName:   "Project name",
		fieldPythonExec:    "Python",
		fieldDjangoVersion: "Django version",
		fieldApps:          "Apps",
		fieldTemplateDir:   "Template dir",
	}

	fieldPlaceholders = [fieldCount]string{
		fieldDestination:   generator.DefaultDestination,
		fieldProjectName:   generator.DefaultProjectName,
		fieldPythonExec:    "python3 from PATH",
		fieldDjangoVersion: "latest",
		fieldApps:          "comma separated, e.g. users,blog",
		fieldTemplateDir:   "none",
	}

	palette = struct {
		magenta lipgloss.Color
		yellow  lipgloss.Color
		red     lipgloss.Color
		green   lipgloss.Color
		grey    lipgloss.Color
	}{
		magenta: lipgloss.Color("212"),
		yellow:  lipgloss.Color("184"),
		red:     lipgloss.Color("203"),
		green:   lipgloss.Color("78"),
		grey:    lipgloss.Color("245"),
	}

	highlightedStyle = getStyle(true, false)
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(palette.magenta)
	promptStyle      = lipgloss.NewStyle().Bold(true).Foreground(palette.yellow)
	logPaneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(palette.grey)
)

func getStyle(highlighted, disabled bool) lipgloss.Style {
	style := lipgloss.NewStyle()

	if highlighted {
		style = style.Foreground(palette.magenta)
	}

	if disabled {
		style = style.Foreground(palette.grey)
	}

	return style
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case statusDone:
		return lipgloss.NewStyle().Foreground(palette.green)
	case statusError:
		return lipgloss.NewStyle().Foreground(palette.red)
	case statusRunning:
		return lipgloss.NewStyle().Foreground(palette.yellow)
	default:
		return lipgloss.NewStyle()
	}
}

// WithLogFile lets the o key open path through open.
func WithLogFile(path string, open func(string) error) Option {
	return func(m *Model) {
		m.logPath = path
		m.open = open
	}
}

// WithDump writes every message the model receives to w.
func WithDump(w io.Writer) Option {
	return func(m *Model) { m.dump = w }
}

// New builds the form prefilled from spec. run is started, off the UI loop, once the user
// confirms.
func New(ctx context.Context, spec generator.Spec, run RunFunc, opts ...Option) Model {
	m := Model{
		ctx:     ctx,
		run:     run,
		base:    spec,
		events:  make(chan tea.Msg, 128),
		help:    help.New(),
		logPane: viewport.New(80, logPaneHeight),
		inputs:  make([]textinput.Model, fieldCount),
		toggles: make([]toggle, toggleCount),
		status:  statusReady,
	}

	values := [fieldCount]string{
		fieldDestination:   spec.Destination,
		fieldProjectName:   spec.ProjectName,
		fieldPythonExec:    spec.PythonExec,
		fieldDjangoVersion: spec.DjangoVersion,
		fieldApps:          strings.Join(spec.Apps, ","),
		fieldTemplateDir:   spec.TemplateDir,
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = fieldPlaceholders[i]
		ti.CharLimit = 256
		ti.Width = 48
		ti.Prompt = " "
		ti.SetValue(values[i])

		m.inputs[i] = ti
	}

	m.toggles[toggleVenv] = toggle{label: "Create virtual environment", on: spec.CreateVenv}
	m.toggles[toggleTemplates] = toggle{label: "Templates and static files", on: spec.CreateTemplates}
	m.toggles[toggleGit] = toggle{label: "Initialize git repository", on: spec.InitGit}
	m.toggles[toggleGitignore] = toggle{label: "Write .gitignore", on: spec.Gitignore}
	m.toggles[toggleDryRun] = toggle{label: "Dry run", on: spec.DryRun}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Result returns the spec of the last run and whether that run succeeded.
func (m Model) Result() (generator.Spec, bool) {
	return m.spec, m.succeeded
}

func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) buildSpec() generator.Spec {
	spec := m.base

	value := func(i int) string {
		return strings.TrimSpace(m.inputs[i].Value())
	}

	spec.Destination = value(fieldDestination)
	if spec.Destination == "" {
		spec.Destination = generator.DefaultDestination
	}

	spec.ProjectName = value(fieldProjectName)
	if spec.ProjectName == "" {
		spec.ProjectName = generator.DefaultProjectName
	}

	spec.PythonExec = value(fieldPythonExec)
	spec.DjangoVersion = value(fieldDjangoVersion)
	spec.Apps = generator.ParseApps(value(fieldApps))
	spec.TemplateDir = value(fieldTemplateDir)

	spec.CreateVenv = m.toggles[toggleVenv].on
	spec.CreateTemplates = m.toggles[toggleTemplates].on
	spec.InitGit = m.toggles[toggleGit].on
	spec.Gitignore = m.toggles[toggleGitignore].on
	spec.DryRun = m.toggles[toggleDryRun].on

	return spec
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.logPane.SetContent(strings.Join(m.lines, "\n"))
	m.logPane.GotoBottom()
}

func (m *Model) submit() tea.Cmd {
	spec := m.buildSpec()

	if _, err := spec.Validate(); err != nil {
		m.status = statusError
		m.appendLine("error: " + err.Error())

		return nil
	}

	m.spec = spec
	m.confirming = true
	m.prompt = fmt.Sprintf("Create '%s' at %s? y/n", spec.ProjectName, spec.Destination)

	return nil
}

func (m *Model) start() tea.Cmd {
	m.confirming = false
	m.running = true
	m.succeeded = false
	m.err = nil
	m.status = statusRunning
	m.lines = nil
	m.logPane.SetContent("")

	return tea.Batch(runSpec(m.ctx, m.run, m.spec, m.events), waitForEvent(m.events))
}

func runSpec(ctx context.Context, run RunFunc, spec generator.Spec, events chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, spec, func(line string) { events <- logLineMsg(line) })

		events <- doneMsg{err: err}

		return nil
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m Model) openLog() tea.Cmd {
	if m.logPath == "" || m.open == nil {
		return func() tea.Msg { return noticeMsg("no log file is being written") }
	}

	path, open := m.logPath, m.open

	return func() tea.Msg {
		if err := open(path); err != nil {
			return noticeMsg("error: " + err.Error())
		}

		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dump != nil {
		spew.Fdump(m.dump, msg)
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.logPane.Width = max(msg.Width-2, 20)

		return m, nil
	case logLineMsg:
		m.appendLine(string(msg))

		return m, waitForEvent(m.events)
	case doneMsg:
		m.running = false
		m.err = msg.err

		if msg.err != nil {
			m.status = statusError
		} else {
			m.status = statusDone
			m.succeeded = true
		}

		return m, nil
	case noticeMsg:
		m.appendLine(string(msg))

		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.editing {
		m.inputs[m.index], cmd = m.inputs[m.index].Update(msg)
	}

	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, keys.forceQuit):
		return m, tea.Quit
	case key.Matches(msg, keys.scroll) && !m.editing:
		m.logPane, cmd = m.logPane.Update(msg)

		return m, cmd
	case m.running:
		return m, nil
	case m.confirming:
		switch {
		case key.Matches(msg, keys.yes):
			cmd = m.start()

			return m, cmd
		case key.Matches(msg, keys.no):
			m.confirming = false
			m.status = statusReady
		}

		return m, nil
	case m.editing && key.Matches(msg, keys.finish):
		m.inputs[m.index].Blur()
		m.editing = false

		return m, nil
	case m.editing:
		m.inputs[m.index], cmd = m.inputs[m.index].Update(msg)

		return m, cmd
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.openLog):
		return m, m.openLog()
	case key.Matches(msg, keys.up):
		if m.index > 0 {
			m.index--
		}
	case key.Matches(msg, keys.down):
		if m.index < buttonIndex {
			m.index++
		}
	case key.Matches(msg, keys.tick):
		if t := m.index - fieldCount; t >= 0 && t < toggleCount {
			m.toggles[t].on = !m.toggles[t].on
		}
	case key.Matches(msg, keys.enter):
		switch t := m.index - fieldCount; {
		case m.index < fieldCount:
			m.editing = true
			cmd = m.inputs[m.index].Focus()

			return m, cmd
		case t < toggleCount:
			m.toggles[t].on = !m.toggles[t].on
		default:
			cmd = m.submit()

			return m, cmd
		}
	}

	return m, nil
}

func cursor(highlighted bool) string {
	if highlighted {
		return highlightedStyle.Render("> ")
	}

	return "  "
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Create a Django project"))
	b.WriteString("\n\n")

	for i := range m.inputs {
		b.WriteString(cursor(m.index == i))
		b.WriteString(getStyle(m.index == i, false).Render(fmt.Sprintf("%-*s", labelWidth, fieldLabels[i]+":")))
		b.WriteString(m.inputs[i].View())
		b.WriteRune('\n')
	}

	b.WriteRune('\n')

	for i, t := range m.toggles {
		mark := "[ ]"
		if t.on {
			mark = "[x]"
		}

		highlighted := m.index == fieldCount+i

		b.WriteString(cursor(highlighted))
		b.WriteString(getStyle(highlighted, false).Render(mark + " " + t.label))
		b.WriteRune('\n')
	}

	b.WriteRune('\n')
	b.WriteString(cursor(m.index == buttonIndex))
	b.WriteString(getStyle(m.index == buttonIndex, m.running).Render("[ Create Project ]"))
	b.WriteString("\n\n")

	if m.confirming {
		b.WriteString(promptStyle.Render(m.prompt))
		b.WriteString("\n\n")
	}

	b.WriteString("Status: ")
	b.WriteString(statusStyle(m.status).Render(m.status))
	b.WriteRune('\n')

	if len(m.lines) > 0 {
		b.WriteString(logPaneStyle.Render(m.logPane.View()))
		b.WriteRune('\n')
	}

	b.WriteRune('\n')

	switch {
	case m.running:
		b.WriteString(m.help.View(runningKeyMap{}))
	case m.confirming:
		b.WriteString(m.help.View(confirmKeyMap{}))
	case m.editing:
		b.WriteString(m.help.View(inputKeyMap{}))
	default:
		b.WriteString(m.help.View(navKeyMap{}))
	}

	b.WriteRune('\n')

	return b.String()
}
