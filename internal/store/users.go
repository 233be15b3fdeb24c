package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mandalart/internal/model"
)

func (s *Store) CreateUser(ctx context.Context, kind model.UserKind, displayName string) (model.User, error) {
	switch kind {
	case model.UserKindAnonymous, model.UserKindCLI:
	default:
		return model.User{}, fmt.Errorf("invalid user kind: %q (expected anonymous|cli)", kind)
	}
	u := model.User{
		ID:          uuid.NewString(),
		Kind:        kind,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   s.nowUTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users(id, kind, display_name, created_at_unixms) VALUES(?, ?, ?, ?)
	`, u.ID, string(u.Kind), u.DisplayName, toUnixMs(u.CreatedAt))
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (model.User, error) {
	var (
		u    model.User
		kind string
		ms   int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kind, display_name, created_at_unixms FROM users WHERE id = ?
	`, strings.TrimSpace(id)).Scan(&u.ID, &kind, &u.DisplayName, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.User{}, err
	}
	u.Kind = model.UserKind(kind)
	u.CreatedAt = fromUnixMs(ms)
	return u, nil
}

const cliUserMetaKey = "cli_user_id"

// CLIUser returns the persistent local user of the command line, creating it
// on first use.
func (s *Store) CLIUser(ctx context.Context) (model.User, error) {
	id, ok, err := s.Meta(ctx, cliUserMetaKey)
	if err != nil {
		return model.User{}, err
	}
	if ok {
		u, err := s.FindUser(ctx, id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return model.User{}, err
		}
	}
	u, err := s.CreateUser(ctx, model.UserKindCLI, "")
	if err != nil {
		return model.User{}, err
	}
	if err := s.SetMeta(ctx, cliUserMetaKey, u.ID); err != nil {
		return model.User{}, err
	}
	return u, nil
}
