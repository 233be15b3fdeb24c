package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mandalart/internal/grid"
)

const draftFileName = "draft.json"

// Draft is the in-progress grid of the local editor.
//
// It is best effort: a missing or corrupt file loads as an empty draft.
type Draft struct {
	Version   int       `json:"version"`
	Grid      grid.Grid `json:"grid"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Drafts stores a single Draft under Dir.
type Drafts struct {
	Dir string
}

// Path is the draft file location.
func (d Drafts) Path() string {
	return filepath.Join(d.Dir, draftFileName)
}

func (d Drafts) Load() (*Draft, error) {
	if strings.TrimSpace(d.Dir) == "" {
		return &Draft{Version: 1}, nil
	}
	b, err := os.ReadFile(d.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Draft{Version: 1}, nil
		}
		return nil, err
	}
	var dr Draft
	if err := json.Unmarshal(b, &dr); err != nil {
		return &Draft{Version: 1}, nil
	}
	if dr.Version == 0 {
		dr.Version = 1
	}
	return &dr, nil
}

func (d Drafts) Save(dr *Draft) error {
	if dr == nil || strings.TrimSpace(d.Dir) == "" {
		return nil
	}
	if dr.Version == 0 {
		dr.Version = 1
	}
	now := time.Now().UTC()
	if dr.CreatedAt.IsZero() {
		dr.CreatedAt = now
	}
	dr.UpdatedAt = now
	b, err := json.MarshalIndent(dr, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(d.Path(), b, 0o644)
}

func (d Drafts) Clear() error {
	if strings.TrimSpace(d.Dir) == "" {
		return nil
	}
	if err := os.Remove(d.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
