package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mandalart/internal/grid"
	"mandalart/internal/model"
)

const mandalartColumns = `id, user_id, center, themes_json, is_public, user_display_name,
	tags_json, og_image_url, view_count, created_at_unixms, updated_at_unixms`

// InsertMandalart stores m as a new row. ID and timestamps are assigned here;
// an empty display name becomes model.DefaultDisplayName.
func (s *Store) InsertMandalart(ctx context.Context, m model.Mandalart) (model.Mandalart, error) {
	if strings.TrimSpace(m.UserID) == "" {
		return model.Mandalart{}, errors.New("missing user id")
	}
	now := s.nowUTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.ViewCount = 0
	m.UserDisplayName = strings.TrimSpace(m.UserDisplayName)
	if m.UserDisplayName == "" {
		m.UserDisplayName = model.DefaultDisplayName
	}
	m.Tags = normalizeTags(m.Tags)

	themes, tags, err := encodeMandalartJSON(m)
	if err != nil {
		return model.Mandalart{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mandalarts(`+mandalartColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Center, themes, boolToInt(m.IsPublic), m.UserDisplayName,
		tags, m.OGImageURL, m.ViewCount, toUnixMs(m.CreatedAt), toUnixMs(m.UpdatedAt))
	if err != nil {
		return model.Mandalart{}, err
	}
	return m, nil
}

func (s *Store) GetMandalart(ctx context.Context, id string) (model.Mandalart, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mandalartColumns+` FROM mandalarts WHERE id = ?`, strings.TrimSpace(id))
	m, err := scanMandalart(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Mandalart{}, fmt.Errorf("mandalart %s: %w", id, ErrNotFound)
	}
	return m, err
}

// RecordView increments the view counter and returns the updated row.
func (s *Store) RecordView(ctx context.Context, id string) (model.Mandalart, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE mandalarts SET view_count = view_count + 1 WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return model.Mandalart{}, err
	}
	if err := requireAffected(res, "mandalart", id); err != nil {
		return model.Mandalart{}, err
	}
	return s.GetMandalart(ctx, id)
}

// ListPublic returns public mandalarts, newest first.
func (s *Store) ListPublic(ctx context.Context, limit, offset int) ([]model.Mandalart, error) {
	return s.queryMandalarts(ctx, `
		SELECT `+mandalartColumns+` FROM mandalarts
		WHERE is_public = 1
		ORDER BY created_at_unixms DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, clampLimit(limit), clampOffset(offset))
}

// ListByUser returns every mandalart owned by userID, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Mandalart, error) {
	return s.queryMandalarts(ctx, `
		SELECT `+mandalartColumns+` FROM mandalarts
		WHERE user_id = ?
		ORDER BY created_at_unixms DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, strings.TrimSpace(userID), clampLimit(limit), clampOffset(offset))
}

// ListAll returns every mandalart regardless of visibility, oldest first.
func (s *Store) ListAll(ctx context.Context) ([]model.Mandalart, error) {
	return s.queryMandalarts(ctx, `
		SELECT `+mandalartColumns+` FROM mandalarts
		ORDER BY created_at_unixms ASC, rowid ASC
	`)
}

func (s *Store) CountMandalarts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM mandalarts`).Scan(&n)
	return n, err
}

// UpdateMandalart writes the editable fields of m and bumps updated_at.
// Ownership, counters and the OG image URL are left untouched.
func (s *Store) UpdateMandalart(ctx context.Context, m model.Mandalart) (model.Mandalart, error) {
	m.UserDisplayName = strings.TrimSpace(m.UserDisplayName)
	if m.UserDisplayName == "" {
		m.UserDisplayName = model.DefaultDisplayName
	}
	m.Tags = normalizeTags(m.Tags)
	themes, tags, err := encodeMandalartJSON(m)
	if err != nil {
		return model.Mandalart{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE mandalarts
		SET center = ?, themes_json = ?, is_public = ?, user_display_name = ?, tags_json = ?, updated_at_unixms = ?
		WHERE id = ?
	`, m.Center, themes, boolToInt(m.IsPublic), m.UserDisplayName, tags, toUnixMs(s.nowUTC()), m.ID)
	if err != nil {
		return model.Mandalart{}, err
	}
	if err := requireAffected(res, "mandalart", m.ID); err != nil {
		return model.Mandalart{}, err
	}
	return s.GetMandalart(ctx, m.ID)
}

func (s *Store) SetOGImageURL(ctx context.Context, id, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE mandalarts SET og_image_url = ? WHERE id = ?`, url, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	return requireAffected(res, "mandalart", id)
}

func (s *Store) DeleteMandalart(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mandalarts WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	return requireAffected(res, "mandalart", id)
}

func (s *Store) queryMandalarts(ctx context.Context, query string, args ...any) ([]model.Mandalart, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Mandalart{}
	for rows.Next() {
		m, err := scanMandalart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMandalart(r rowScanner) (model.Mandalart, error) {
	var (
		m                  model.Mandalart
		themesJSON, tagsJS string
		isPublic           int
		createdMs, updMs   int64
	)
	if err := r.Scan(&m.ID, &m.UserID, &m.Center, &themesJSON, &isPublic, &m.UserDisplayName,
		&tagsJS, &m.OGImageURL, &m.ViewCount, &createdMs, &updMs); err != nil {
		return model.Mandalart{}, err
	}
	var themes [grid.ThemeCount]grid.Theme
	if err := json.Unmarshal([]byte(themesJSON), &themes); err != nil {
		return model.Mandalart{}, fmt.Errorf("mandalart %s: decode themes: %w", m.ID, err)
	}
	m.Themes = themes
	m.Tags = []string{}
	if err := json.Unmarshal([]byte(tagsJS), &m.Tags); err != nil {
		return model.Mandalart{}, fmt.Errorf("mandalart %s: decode tags: %w", m.ID, err)
	}
	m.IsPublic = isPublic != 0
	m.CreatedAt = fromUnixMs(createdMs)
	m.UpdatedAt = fromUnixMs(updMs)
	return m, nil
}

func encodeMandalartJSON(m model.Mandalart) (themes string, tags string, err error) {
	tb, err := json.Marshal(m.Themes)
	if err != nil {
		return "", "", err
	}
	gb, err := json.Marshal(m.Tags)
	if err != nil {
		return "", "", err
	}
	return string(tb), string(gb), nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
