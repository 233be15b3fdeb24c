package grid

import (
	"fmt"
	"strings"
)

const zeroWidthSpace = "\u200b"

// Theme is one sub-goal with its eight action items.
type Theme struct {
	Title   string              `json:"title"`
	Details [DetailCount]string `json:"details"`
}

// Grid is a whole Mandalart: the center goal and its eight themes.
// The JSON shape is the storage and wire format.
type Grid struct {
	Center string             `json:"center"`
	Themes [ThemeCount]Theme `json:"themes"`
}

// LooseTheme is the slice-shaped input accepted by FromLoose.
type LooseTheme struct {
	Title   string   `json:"title" yaml:"title"`
	Details []string `json:"details" yaml:"details"`
}

// FromLoose builds a Grid from slice-shaped input. Missing themes or details
// stay empty; extra ones are out of range.
func FromLoose(center string, themes []LooseTheme) (Grid, error) {
	var g Grid
	if len(themes) > ThemeCount {
		return Grid{}, &RangeError{Field: "theme", Value: len(themes) - 1, Max: ThemeCount - 1}
	}
	g.Center = CleanText(center)
	for t, th := range themes {
		if len(th.Details) > DetailCount {
			return Grid{}, &RangeError{Field: "detail", Value: len(th.Details) - 1, Max: DetailCount - 1}
		}
		g.Themes[t].Title = CleanText(th.Title)
		for d, s := range th.Details {
			g.Themes[t].Details[d] = CleanText(s)
		}
	}
	return g, nil
}

// CleanText drops the zero-width spaces editors use for caret placement and trims.
func CleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, zeroWidthSpace, ""))
}

// Get returns the text stored at a.
func (g *Grid) Get(a Address) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	switch a.Kind {
	case KindCenter:
		return g.Center, nil
	case KindTheme:
		return g.Themes[a.Theme].Title, nil
	default:
		return g.Themes[a.Theme].Details[a.Detail], nil
	}
}

// Set stores cleaned text at a. Both projections of a theme title share one value.
func (g *Grid) Set(a Address, text string) error {
	if err := a.Validate(); err != nil {
		return err
	}
	text = CleanText(text)
	switch a.Kind {
	case KindCenter:
		g.Center = text
	case KindTheme:
		g.Themes[a.Theme].Title = text
	default:
		g.Themes[a.Theme].Details[a.Detail] = text
	}
	return nil
}

func (g *Grid) TextAt(index int) (string, error) {
	a, err := Classify(index)
	if err != nil {
		return "", err
	}
	return g.Get(a)
}

func (g *Grid) SetAt(index int, text string) error {
	a, err := Classify(index)
	if err != nil {
		return err
	}
	return g.Set(a, text)
}

// Reset empties every slot.
func (g *Grid) Reset() { *g = Grid{} }

// Cell is one rendered position of the 9x9 grid.
type Cell struct {
	Index   int     `json:"index"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Address Address `json:"address"`
	Text    string  `json:"text"`
}

// Cells projects the grid onto its 81 positions in index order.
func (g Grid) Cells() [CellCount]Cell {
	var out [CellCount]Cell
	for i := range out {
		a := MustClassify(i)
		text, _ := g.Get(a)
		row, col := RowCol(i)
		out[i] = Cell{Index: i, Row: row, Col: col, Address: a, Text: text}
	}
	return out
}

// Stats counts the filled slots.
type Stats struct {
	HasCenter     bool `json:"has_center"`
	FilledThemes  int  `json:"filled_themes"`
	FilledDetails int  `json:"filled_details"`
}

func (g Grid) Stats() Stats {
	st := Stats{HasCenter: strings.TrimSpace(g.Center) != ""}
	for _, th := range g.Themes {
		if strings.TrimSpace(th.Title) != "" {
			st.FilledThemes++
		}
		for _, d := range th.Details {
			if strings.TrimSpace(d) != "" {
				st.FilledDetails++
			}
		}
	}
	return st
}

func (g Grid) IsEmpty() bool {
	st := g.Stats()
	return !st.HasCenter && st.FilledThemes == 0 && st.FilledDetails == 0
}

func (s Stats) String() string {
	center := "no center"
	if s.HasCenter {
		center = "center set"
	}
	return fmt.Sprintf("%s, themes %d/%d, details %d/%d", center, s.FilledThemes, ThemeCount, s.FilledDetails, ThemeCount*DetailCount)
}
