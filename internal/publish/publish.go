package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"mandalart/internal/model"
	"mandalart/internal/render"
	"mandalart/internal/store"
)

type WriteOptions struct {
	Overwrite bool
	// SkipImages writes only the Markdown outline.
	SkipImages bool
	BaseURL    string
	// OGImageSource is a stored share image to copy instead of rendering one.
	OGImageSource string
}

type WriteResult struct {
	Written []string `json:"written"`
}

// Write exports m under toDir as <id>.md, <id>.png, <id>_thumb.png and
// <id>_og.png.
func Write(m model.Mandalart, toDir string, opt WriteOptions) (WriteResult, error) {
	id := strings.TrimSpace(m.ID)
	if id == "" {
		return WriteResult{}, errors.New("missing mandalart id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	type output struct {
		name   string
		render func() ([]byte, error)
		copyOf string
	}
	outputs := []output{{
		name: id + ".md",
		render: func() ([]byte, error) {
			return []byte(RenderMarkdown(m, RenderOptions{BaseURL: opt.BaseURL})), nil
		},
	}}
	if !opt.SkipImages {
		outputs = append(outputs,
			output{name: id + ".png", render: func() ([]byte, error) { return render.GridPNG(m.Grid, render.FullOptions) }},
			output{name: id + "_thumb.png", render: func() ([]byte, error) { return render.GridPNG(m.Grid, render.ThumbnailOptions) }},
		)
		og := output{name: id + "_og.png", render: func() ([]byte, error) { return render.OGImagePNG(m.Grid) }}
		if src := strings.TrimSpace(opt.OGImageSource); src != "" {
			if _, err := os.Stat(src); err == nil {
				og.copyOf = src
			}
		}
		outputs = append(outputs, og)
	}

	// Check every target first so a refused overwrite writes nothing.
	if !opt.Overwrite {
		for _, o := range outputs {
			p := filepath.Join(toDir, o.name)
			if _, err := os.Stat(p); err == nil {
				return WriteResult{}, errors.New("file exists (use --overwrite): " + p)
			}
		}
	}

	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		p := filepath.Join(toDir, o.name)
		if o.copyOf != "" {
			if err := store.CopyFile(o.copyOf, p); err != nil {
				return WriteResult{}, err
			}
			written = append(written, p)
			continue
		}
		b, err := o.render()
		if err != nil {
			return WriteResult{}, err
		}
		if err := writeFile(p, b, opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
