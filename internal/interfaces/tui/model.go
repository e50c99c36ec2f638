// Package tui provides the terminal review screen for one document.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/garyjia/mrsl-intake/internal/application/service"
	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
	"github.com/garyjia/mrsl-intake/internal/domain/event"
	"github.com/garyjia/mrsl-intake/internal/intake"
	"github.com/garyjia/mrsl-intake/internal/review"
)

// extractedMsg carries the outcome of the extraction command
type extractedMsg struct {
	snapshot service.Snapshot
	err      error
}

// submittedMsg carries the outcome of the submit command
type submittedMsg struct {
	snapshot service.Snapshot
	err      error
}

// control is one editable row of the review form
type control struct {
	field    review.Field
	input    textinput.Model
	options  []review.Option
	selected int
}

func (c *control) value() string {
	return c.input.Value()
}

// cycle moves the class code selection and copies it into the input
func (c *control) cycle(delta int) {
	n := len(c.options)
	if n == 0 {
		return
	}
	c.selected = (c.selected + delta + n) % n
	c.input.SetValue(c.options[c.selected].Value)
	c.input.CursorEnd()
}

type status struct {
	level   event.Level
	message string
}

// Model is the bubbletea model of the review screen. It implements tea.Model.
type Model struct {
	ctx           context.Context
	session       service.Session
	notifications service.NotificationService
	doc           *intake.Document
	styles        *Styles

	spinner  spinner.Model
	controls []control
	focus    int
	status   status
	snapshot service.Snapshot
	cleared  bool
	width    int
}

var _ tea.Model = (*Model)(nil)

// NewModel creates the review screen for doc. Extraction starts from Init.
func NewModel(
	ctx context.Context,
	session service.Session,
	notifications service.NotificationService,
	doc *intake.Document,
) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		ctx:           ctx,
		session:       session,
		notifications: notifications,
		doc:           doc,
		styles:        DefaultStyles(),
		spinner:       s,
		snapshot:      session.Snapshot(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.snapshot.IsExtracting = true
	m.status = status{level: event.LevelInfo, message: "Processing..."}
	return tea.Batch(m.spinner.Tick, m.extract())
}

func (m *Model) extract() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.SelectDocument(m.ctx, m.doc)
		return extractedMsg{snapshot: snap, err: err}
	}
}

func (m *Model) submit(values map[string]string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.session.EditAll(m.ctx, values); err != nil {
			return submittedMsg{snapshot: m.session.Snapshot(), err: err}
		}
		snap, err := m.session.Submit(m.ctx)
		return submittedMsg{snapshot: snap, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case extractedMsg:
		m.snapshot = msg.snapshot
		if msg.err != nil {
			m.setStatus(event.LevelError, msg.err.Error())
			return m, nil
		}
		m.loadControls()
		m.setStatus(event.LevelSuccess, service.MsgExtracted)
		return m, nil

	case submittedMsg:
		m.snapshot = msg.snapshot
		if errors.Is(msg.err, service.ErrDiscarded) {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(event.LevelError, service.MsgSubmissionFailed)
			return m, nil
		}
		m.setStatus(event.LevelSuccess, service.MsgSubmitted)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+r":
		m.snapshot = m.session.Clear(m.ctx)
		m.controls = nil
		m.cleared = true
		return m, tea.Quit
	}

	if m.busy() || len(m.controls) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.moveFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil

	case "ctrl+s":
		m.snapshot.IsSubmitting = true
		m.status = status{level: event.LevelInfo, message: "Submitting..."}
		return m, tea.Batch(m.spinner.Tick, m.submit(m.Values()))
	}

	c := &m.controls[m.focus]
	if c.field.Kind == review.KindSelect {
		switch msg.String() {
		case "left":
			c.cycle(-1)
			return m, nil
		case "right":
			c.cycle(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return m, cmd
}

func (m *Model) loadControls() {
	if !m.snapshot.HasRecord() {
		m.controls = nil
		return
	}

	fields := m.snapshot.Form().Fields()
	m.controls = make([]control, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 120
		ti.Width = 40
		ti.SetValue(f.Value)

		c := control{field: f, input: ti}
		if f.Kind == review.KindSelect {
			c.input.Placeholder = "Select class code"
			c.input.Width = 12
			c.options = f.Options
			for j, opt := range f.Options {
				if opt.Selected {
					c.selected = j
				}
			}
		}
		m.controls[i] = c
	}
	m.focus = 0
	m.syncFocus()
}

func (m *Model) moveFocus(delta int) {
	n := len(m.controls)
	m.focus = (m.focus + delta + n) % n
	m.syncFocus()
}

func (m *Model) syncFocus() {
	for i := range m.controls {
		if i == m.focus {
			m.controls[i].input.Focus()
		} else {
			m.controls[i].input.Blur()
		}
	}
}

// setStatus prefers the latest notification raised by the session
func (m *Model) setStatus(level event.Level, fallback string) {
	m.status = status{level: level, message: fallback}
	if m.notifications == nil {
		return
	}
	pending := m.notifications.Drain()
	if len(pending) == 0 {
		return
	}
	last := pending[len(pending)-1]
	m.status = status{level: last.Level, message: last.Message}
}

func (m *Model) busy() bool {
	return m.snapshot.IsExtracting || m.snapshot.IsSubmitting
}

// Values returns the current form values keyed by field
func (m *Model) Values() map[string]string {
	values := make(map[string]string, len(m.controls))
	for i := range m.controls {
		values[m.controls[i].field.Key.String()] = m.controls[i].value()
	}
	return values
}

// Snapshot returns the last session state the model has seen
func (m *Model) Snapshot() service.Snapshot {
	return m.snapshot
}

// Cleared reports whether the user discarded the session
func (m *Model) Cleared() bool {
	return m.cleared
}

// Status returns the message on the status line
func (m *Model) Status() string {
	return m.status.message
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("MRSL Document Review"))
	b.WriteString("\n\n")

	if m.snapshot.File != nil {
		card := fmt.Sprintf("%s\n%s", m.snapshot.File.Name, m.styles.Muted.Render(m.snapshot.File.SizeLabel))
		b.WriteString(m.styles.Card.Render(card))
		b.WriteString("\n\n")
	}

	switch {
	case m.snapshot.IsExtracting:
		b.WriteString(m.spinner.View() + " Processing...\n")
	case len(m.controls) == 0:
		b.WriteString(m.styles.Muted.Render("No document processed yet"))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderForm())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderForm() string {
	var b strings.Builder
	for i := range m.controls {
		c := &m.controls[i]
		label := m.styles.Label.Render(c.field.Label)
		if i == m.focus {
			label = m.styles.Focused.Render(c.field.Label)
		}

		var value string
		if c.field.Kind == review.KindSelect {
			value = m.renderSelect(c, i == m.focus)
		} else {
			value = c.input.View()
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, value))
		b.WriteString("\n")
	}
	return b.String()
}

// renderSelect shows the typed code next to its reference description
func (m *Model) renderSelect(c *control, focused bool) string {
	code := strings.TrimSpace(c.input.Value())
	hint := ""
	switch {
	case code == "":
	case classcode.IsKnown(code):
		hint = classcode.Describe(code)
	default:
		hint = classcode.Describe(code) + " (unrecognized)"
	}

	view := c.input.View()
	if focused {
		view = m.styles.Selected.Render("‹ ") + view + m.styles.Selected.Render(" ›")
	}
	if hint == "" {
		return view
	}
	return view + " " + m.styles.Muted.Render(hint)
}

func (m *Model) renderStatus() string {
	msg := m.status.message
	if m.snapshot.IsSubmitting {
		return m.spinner.View() + " Submitting..."
	}
	switch m.status.level {
	case event.LevelSuccess:
		return m.styles.Success.Render(msg)
	case event.LevelError:
		return m.styles.Error.Render(msg)
	default:
		return m.styles.Muted.Render(msg)
	}
}

func (m *Model) renderHelp() string {
	if len(m.controls) == 0 {
		return m.styles.Help.Render("ctrl+r clear • esc quit")
	}
	return m.styles.Help.Render("tab/shift+tab move • ←/→ class code • ctrl+s submit • ctrl+r clear • esc quit")
}

// Run shows the review screen until the user quits and returns the final model
func Run(
	ctx context.Context,
	session service.Session,
	notifications service.NotificationService,
	doc *intake.Document,
	opts ...tea.ProgramOption,
) (*Model, error) {
	m := NewModel(ctx, session, notifications, doc)
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, fmt.Errorf("running review screen: %w", err)
	}
	if fm, ok := final.(*Model); ok {
		return fm, nil
	}
	return m, nil
}
