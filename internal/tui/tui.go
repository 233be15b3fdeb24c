package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mandalart/internal/grid"
)

// Result is what the editor hands back when it exits.
type Result struct {
	Grid grid.Grid
	// Completed is true when the user finished with a valid grid (ctrl+s).
	// Otherwise the editor was quit and the work stays in the draft.
	Completed bool
}

// Run opens the full-screen grid editor. An empty g resumes the saved draft.
func Run(ctx context.Context, g grid.Grid, drafts DraftStore) (Result, error) {
	applyColorProfilePreference()
	applyThemePreference()

	m := newEditorModel(g, drafts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return Result{}, err
	}
	em, ok := final.(editorModel)
	if !ok {
		return Result{}, nil
	}
	return Result{Grid: em.grid, Completed: em.completed}, nil
}
