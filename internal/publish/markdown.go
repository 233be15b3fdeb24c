package publish

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"mandalart/internal/grid"
	"mandalart/internal/model"
)

type RenderOptions struct {
	// IncludeEmpty keeps themes and details that have no text.
	IncludeEmpty bool
	// BaseURL, when set, adds a link to the web view.
	BaseURL string
}

// RenderMarkdown renders m as an outline: the center goal as the title, one
// section per theme and its details as a list.
func RenderMarkdown(m model.Mandalart, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(m.Center)
	if title == "" {
		title = "(untitled)"
	}
	writeLn("# " + title)
	writeLn("")

	writeLn("## Meta")
	writeLn("")
	if m.ID != "" {
		writeLn("- ID: " + m.ID)
	}
	writeLn("- Author: " + m.DisplayName())
	if m.IsPublic {
		writeLn("- Visibility: public")
	} else {
		writeLn("- Visibility: private")
	}
	if tags := cleanTags(m.Tags); len(tags) > 0 {
		writeLn("- Tags: " + strings.Join(tags, ", "))
	}
	writeLn(fmt.Sprintf("- Views: %d", m.ViewCount))
	writeLn("- Progress: " + m.Stats().String())
	if !m.CreatedAt.IsZero() {
		writeLn("- Created: " + m.CreatedAt.UTC().Format(time.RFC3339))
	}
	if !m.UpdatedAt.IsZero() {
		writeLn("- Updated: " + m.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if base := strings.TrimRight(strings.TrimSpace(opt.BaseURL), "/"); base != "" && m.ID != "" {
		writeLn("- Link: " + base + "/view/" + m.ID)
	}

	buf.WriteString(renderThemes(m.Grid, opt.IncludeEmpty))
	return buf.String()
}

// RenderGridMarkdown renders only the theme sections of g.
func RenderGridMarkdown(g grid.Grid) string {
	return strings.TrimLeft(renderThemes(g, false), "\n")
}

func renderThemes(g grid.Grid, includeEmpty bool) string {
	var buf bytes.Buffer
	for t, th := range g.Themes {
		title := strings.TrimSpace(th.Title)
		details := make([]string, 0, grid.DetailCount)
		for _, d := range th.Details {
			d = strings.TrimSpace(d)
			if d == "" && !includeEmpty {
				continue
			}
			details = append(details, d)
		}
		if title == "" && len(details) == 0 && !includeEmpty {
			continue
		}
		if title == "" {
			title = fmt.Sprintf("Theme %d", t+1)
		}
		buf.WriteString("\n## " + title + "\n\n")
		if len(details) == 0 {
			buf.WriteString("_No actions yet._\n")
			continue
		}
		for _, d := range details {
			buf.WriteString("- " + d + "\n")
		}
	}
	return buf.String()
}

func cleanTags(in []string) []string {
	tags := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
