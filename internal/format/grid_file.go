package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mandalart/internal/grid"
)

// GridDocument is the file shape accepted by `create --from`, `update`,
// `validate` and `draft import`. Themes and details may be shorter than
// eight entries.
type GridDocument struct {
	Center      string            `json:"center" yaml:"center"`
	Themes      []grid.LooseTheme `json:"themes" yaml:"themes"`
	IsPublic    *bool             `json:"is_public,omitempty" yaml:"is_public,omitempty"`
	DisplayName string            `json:"user_display_name,omitempty" yaml:"user_display_name,omitempty"`
	Tags        []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Grid converts the document into a fixed-size grid.
func (d GridDocument) Grid() (grid.Grid, error) {
	return grid.FromLoose(d.Center, d.Themes)
}

// DocumentFromGrid is the inverse of GridDocument.Grid.
func DocumentFromGrid(g grid.Grid) GridDocument {
	d := GridDocument{Center: g.Center, Themes: make([]grid.LooseTheme, 0, grid.ThemeCount)}
	for _, th := range g.Themes {
		d.Themes = append(d.Themes, grid.LooseTheme{Title: th.Title, Details: append([]string(nil), th.Details[:]...)})
	}
	return d
}

// ReadGridDocument decodes a grid document. kind is "json" or "yaml";
// empty sniffs the content.
func ReadGridDocument(r io.Reader, kind string) (GridDocument, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return GridDocument{}, err
	}
	if kind == "" {
		kind = "yaml"
		if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '{' {
			kind = "json"
		}
	}
	var d GridDocument
	switch kind {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return GridDocument{}, fmt.Errorf("decode json grid: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil && err != io.EOF {
			return GridDocument{}, fmt.Errorf("decode yaml grid: %w", err)
		}
	default:
		return GridDocument{}, fmt.Errorf("unknown grid file format: %s (expected json|yaml)", kind)
	}
	return d, nil
}

// ReadGridFile reads path, choosing the decoder from its extension.
// "-" reads stdin.
func ReadGridFile(path string, stdin io.Reader) (GridDocument, error) {
	if path == "-" {
		return ReadGridDocument(stdin, "")
	}
	f, err := os.Open(path)
	if err != nil {
		return GridDocument{}, err
	}
	defer f.Close()
	kind := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		kind = "json"
	case ".yaml", ".yml":
		kind = "yaml"
	}
	return ReadGridDocument(f, kind)
}
