package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"writing_coach/internal/issue"
	"writing_coach/internal/session"
)

const refreshEvery = 250 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// SaveFunc persists the editor text.
type SaveFunc func(text string) error

// Model is a two-pane editor: the text on the left and live feedback on the right.
type Model struct {
	sess   *session.Session
	title  string
	save   SaveFunc
	editor textarea.Model
	panel  viewport.Model
	ready  bool

	issues   []issue.Issue
	selected int
	status   string
	width    int
	height   int
}

func New(sess *session.Session, title, text string, save SaveFunc) Model {
	ed := textarea.New()
	ed.Placeholder = "Start writing..."
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetValue(text)
	ed.Focus()
	if text != "" {
		sess.Update(text)
	}
	return Model{sess: sess, title: title, save: save, editor: ed, panel: viewport.New(40, 20)}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		half := m.width / 2
		m.editor.SetWidth(half - 4)
		m.editor.SetHeight(m.height - 5)
		m.panel.Width = m.width - half - 4
		m.panel.Height = m.height - 5
		m.ready = true
		m.refresh()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			m.status = m.saveText()
			return m, nil
		case "ctrl+r":
			m.sess.Flush()
			m.status = "analyzing"
			return m, nil
		case "tab":
			if len(m.issues) > 0 {
				m.selected = (m.selected + 1) % len(m.issues)
			}
			m.refresh()
			return m, nil
		case "shift+tab":
			if len(m.issues) > 0 {
				m.selected = (m.selected + len(m.issues) - 1) % len(m.issues)
			}
			m.refresh()
			return m, nil
		case "ctrl+a":
			m.applySelected()
			return m, nil
		case "pgdown":
			m.panel.HalfViewDown()
			return m, nil
		case "pgup":
			m.panel.HalfViewUp()
			return m, nil
		}
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)
	if after := m.editor.Value(); after != before {
		m.sess.Update(after)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	view := m.sess.Highlights()
	m.issues = view.Issues()
	if m.selected >= len(m.issues) {
		m.selected = 0
	}
	score, scored := m.sess.Score()
	content := RenderHighlights(view.Current().Text(), view.Spans()) + "\n\n" +
		RenderFeedback(score, scored, m.issues, m.selected, m.sess.Tips())
	if res, ok := m.sess.Result(); ok && len(res.Unavailable) > 0 {
		content += "\n" + mutedStyle.Render(fmt.Sprintf("not checked: %v", res.Unavailable))
	}
	m.panel.SetContent(content)
}

func (m *Model) applySelected() {
	if m.selected >= len(m.issues) {
		m.status = "no issue selected"
		return
	}
	is := m.issues[m.selected]
	if len(is.Suggestions) == 0 {
		m.status = "no suggestion for this issue"
		return
	}
	text, cursor, err := m.sess.ApplySuggestion(is.ID, is.Suggestions[0])
	if err != nil {
		m.status = err.Error()
		return
	}
	m.editor.SetValue(text)
	placeCursor(&m.editor, text, cursor)
	m.status = fmt.Sprintf("applied %q", is.Suggestions[0])
	m.refresh()
}

// placeCursor moves the textarea cursor to byte offset off of text.
func placeCursor(ed *textarea.Model, text string, off int) {
	if off > len(text) {
		off = len(text)
	}
	row := strings.Count(text[:off], "\n")
	lineStart := strings.LastIndexByte(text[:off], '\n') + 1
	col := utf8.RuneCountInString(text[lineStart:off])
	for i := 0; ed.Line() > row && i < len(text)+1; i++ {
		ed.CursorUp()
	}
	ed.SetCursor(col)
}

func (m Model) saveText() string {
	if m.save == nil {
		return "nothing to save to"
	}
	if err := m.save(m.editor.Value()); err != nil {
		return "save failed: " + err.Error()
	}
	return "saved"
}

// Value returns the text in the editor.
func (m Model) Value() string { return m.editor.Value() }

func (m Model) View() string {
	if !m.ready {
		return "Loading...\n"
	}
	left := paneStyle.Render(m.editor.View())
	right := paneStyle.Render(m.panel.View())
	info := m.sess.Info()
	footer := mutedStyle.Render(fmt.Sprintf("%s  v%d  %s  %s  ctrl+s save · ctrl+r analyze · tab select · ctrl+a apply · esc quit",
		m.title, info.Version, info.State, m.status))
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, left, right), footer)
}

// Run starts the editor full screen and returns the final text.
func Run(sess *session.Session, title, text string, save SaveFunc) (string, error) {
	final, err := tea.NewProgram(New(sess, title, text, save), tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("run editor: %w", err)
	}
	return final.(Model).Value(), nil
}
