package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"mandalart/internal/grid"
	"mandalart/internal/store"
)

const (
	cellWidth = 10

	minibufferAutoClearAfter = 4 * time.Second
)

type cellRole int

const (
	roleDetail cellRole = iota
	roleTheme
	roleCenter
)

func roleOf(a grid.Address) cellRole {
	switch a.Kind {
	case grid.KindCenter:
		return roleCenter
	case grid.KindTheme:
		return roleTheme
	default:
		return roleDetail
	}
}

// DraftStore persists the grid between editor sessions. store.Drafts
// implements it.
type DraftStore interface {
	Load() (*store.Draft, error)
	Save(*store.Draft) error
	Clear() error
}

type editorModel struct {
	grid   grid.Grid
	cursor int

	editing bool
	input   textinput.Model

	drafts DraftStore
	draft  *store.Draft

	minibufferText  string
	minibufferErr   bool
	minibufferSetAt time.Time

	resetArmed bool
	completed  bool
	quitting   bool

	width int
}

type clearMinibufferMsg struct{ at time.Time }

func newEditorModel(g grid.Grid, drafts DraftStore) editorModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Width = grid.MaxDetailRunes + 2

	m := editorModel{grid: g, cursor: grid.CenterIndex, input: in, drafts: drafts, draft: &store.Draft{Version: 1}}
	if drafts != nil {
		if dr, err := drafts.Load(); err == nil && dr != nil {
			m.draft = dr
			if g.IsEmpty() {
				m.grid = dr.Grid
			}
		}
	}
	return m
}

func (m editorModel) Init() tea.Cmd { return nil }

func (m *editorModel) showMinibuffer(s string) tea.Cmd {
	m.minibufferText = s
	m.minibufferErr = false
	m.minibufferSetAt = time.Now()
	at := m.minibufferSetAt
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return clearMinibufferMsg{at: at} })
}

func (m *editorModel) showError(s string) tea.Cmd {
	cmd := m.showMinibuffer(s)
	m.minibufferErr = true
	return cmd
}

func (m *editorModel) saveDraft() tea.Cmd {
	if m.drafts == nil {
		return nil
	}
	m.draft.Grid = m.grid
	if err := m.drafts.Save(m.draft); err != nil {
		return m.showError("Draft not saved: " + err.Error())
	}
	return nil
}

func (m editorModel) focused() grid.Address { return grid.MustClassify(m.cursor) }

func (m editorModel) focusedText() string {
	s, _ := m.grid.TextAt(m.cursor)
	return s
}

func charLimit(a grid.Address) int {
	if a.Kind == grid.KindDetail {
		return grid.MaxDetailRunes
	}
	return grid.MaxTitleRunes
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case clearMinibufferMsg:
		if msg.at.Equal(m.minibufferSetAt) {
			m.minibufferText = ""
			m.minibufferErr = false
		}
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m editorModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		m.input.Blur()
		if err := m.grid.SetAt(m.cursor, grid.CleanText(m.input.Value())); err != nil {
			return m, m.showError(err.Error())
		}
		return m, m.saveDraft()
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "R" {
		m.resetArmed = false
	}
	row, col := grid.RowCol(m.cursor)
	switch key {
	case "up", "k":
		if row > 0 {
			m.cursor -= grid.Size
		}
	case "down", "j":
		if row < grid.Size-1 {
			m.cursor += grid.Size
		}
	case "left", "h":
		if col > 0 {
			m.cursor--
		}
	case "right", "l":
		if col < grid.Size-1 {
			m.cursor++
		}
	case "tab":
		m.cursor = jumpBlock(m.cursor, 1)
	case "shift+tab":
		m.cursor = jumpBlock(m.cursor, -1)
	case "enter", "e":
		m.editing = true
		m.input.CharLimit = charLimit(m.focused())
		m.input.SetValue(m.focusedText())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "x", "delete", "backspace":
		if m.focusedText() == "" {
			return m, nil
		}
		_ = m.grid.SetAt(m.cursor, "")
		return m, m.saveDraft()
	case "R":
		if !m.resetArmed {
			m.resetArmed = true
			return m, m.showMinibuffer("Press R again to clear the whole grid")
		}
		m.resetArmed = false
		m.grid.Reset()
		m.draft = &store.Draft{Version: 1}
		if m.drafts != nil {
			if err := m.drafts.Clear(); err != nil {
				return m, m.showError("Draft not cleared: " + err.Error())
			}
		}
		return m, m.showMinibuffer("Grid cleared")
	case "y":
		txt := m.focusedText()
		if txt == "" {
			return m, m.showMinibuffer("Nothing to copy")
		}
		if err := copyToClipboard(txt); err != nil {
			return m, m.showError("Clipboard error: " + err.Error())
		}
		return m, m.showMinibuffer("Copied: " + txt)
	case "ctrl+s":
		if errs := grid.Validate(m.grid); len(errs) > 0 {
			msg := errs[0].Error()
			if len(errs) > 1 {
				msg = fmt.Sprintf("%s (+%d more)", msg, len(errs)-1)
			}
			return m, m.showError(msg)
		}
		m.completed = true
		return m, tea.Quit
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// jumpBlock moves to the same position in the next (dir=1) or previous
// (dir=-1) 3x3 block, wrapping around.
func jumpBlock(index, dir int) int {
	row, col := grid.RowCol(index)
	block := (row/3)*3 + col/3
	next := ((block+dir)%9 + 9) % 9
	return grid.IndexAt((next/3)*3+row%3, (next%3)*3+col%3)
}

func (m editorModel) View() string {
	if m.quitting || m.completed {
		return ""
	}
	var b strings.Builder
	title := lipgloss.NewStyle().Bold(true).Render("Mandalart")
	b.WriteString(title + "  " + styleMuted().Render(m.grid.Stats().String()) + "\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	a := m.focused()
	b.WriteString(styleMuted().Render(fmt.Sprintf("#%d %s", m.cursor, a)) + "\n")
	if m.editing {
		b.WriteString(m.input.View() + "\n")
	} else {
		b.WriteString(m.focusedText() + "\n")
	}

	line := m.minibufferText
	if m.minibufferErr {
		line = lipgloss.NewStyle().Foreground(colorError).Render(line)
	}
	b.WriteString(line + "\n")
	b.WriteString(styleMuted().Render(helpLine(m.editing)))
	return b.String()
}

func helpLine(editing bool) string {
	if editing {
		return "enter save · esc cancel"
	}
	return "←↓↑→/hjkl move · tab block · enter edit · x clear · y copy · ctrl+s complete · R R reset · q quit"
}

func (m editorModel) renderGrid() string {
	sep := lipgloss.NewStyle().Foreground(colorBorder)
	blockRule := sep.Render(strings.Repeat("─", (cellWidth+1)*grid.Size+4))
	var b strings.Builder
	for row := 0; row < grid.Size; row++ {
		if row > 0 && row%3 == 0 {
			b.WriteString(blockRule + "\n")
		}
		cells := make([]string, 0, grid.Size+2)
		for col := 0; col < grid.Size; col++ {
			i := grid.IndexAt(row, col)
			if col > 0 && col%3 == 0 {
				cells = append(cells, sep.Render("│"))
			}
			text, _ := m.grid.TextAt(i)
			text = xansi.Truncate(text, cellWidth, "…")
			cells = append(cells, cellStyle(roleOf(grid.MustClassify(i)), i == m.cursor).Render(text))
		}
		b.WriteString(strings.Join(cells, " ") + "\n")
	}
	return b.String()
}
