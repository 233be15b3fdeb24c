package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The editor must stay readable on light and dark terminals, so colors are
// adaptive and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorCenterBg lipgloss.TerminalColor = lipgloss.Color("#e74c3c")
	colorThemeBg  lipgloss.TerminalColor = lipgloss.Color("#4ecdc4")
	colorOnFill   lipgloss.TerminalColor = lipgloss.Color("#ffffff")

	colorDetailFg lipgloss.TerminalColor = ac("235", "252")
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorBorder   lipgloss.TerminalColor = ac("250", "240")

	colorCursorBg lipgloss.TerminalColor = ac("#e9e9e9", "#3a3a3a")
	colorCursorFg lipgloss.TerminalColor = ac("235", "255")

	colorError lipgloss.TerminalColor = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// cellStyle returns the style of a cell by role. The cursor keeps the role
// color visible by underlining instead of repainting filled cells.
func cellStyle(role cellRole, focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Width(cellWidth).MaxWidth(cellWidth)
	switch role {
	case roleCenter:
		st = st.Background(colorCenterBg).Foreground(colorOnFill).Bold(true)
	case roleTheme:
		st = st.Background(colorThemeBg).Foreground(colorOnFill).Bold(true)
	default:
		st = st.Foreground(colorDetailFg)
	}
	if focused {
		if role == roleDetail {
			st = st.Background(colorCursorBg).Foreground(colorCursorFg)
		}
		st = st.Underline(true).Reverse(role != roleDetail)
	}
	return st
}

// applyColorProfilePreference honors NO_COLOR and otherwise follows the
// terminal's capabilities. termenv.EnvColorProfile is avoided because it also
// honors CLICOLOR, which can disable colors in an interactive program.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) MANDALART_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
// 3) termenv's own query
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MANDALART_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
			return
		}
	}
	lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
}
