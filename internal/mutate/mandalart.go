package mutate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"mandalart/internal/grid"
	"mandalart/internal/model"
	"mandalart/internal/perm"
	"mandalart/internal/render"
	"mandalart/internal/store"
)

// Repository is the persistence the mutations need. *store.Store satisfies it.
type Repository interface {
	InsertMandalart(ctx context.Context, m model.Mandalart) (model.Mandalart, error)
	GetMandalart(ctx context.Context, id string) (model.Mandalart, error)
	UpdateMandalart(ctx context.Context, m model.Mandalart) (model.Mandalart, error)
	DeleteMandalart(ctx context.Context, id string) error
	SetOGImageURL(ctx context.Context, id, url string) error
	ListAll(ctx context.Context) ([]model.Mandalart, error)

	InsertDeleteRequest(ctx context.Context, mandalartID, reason string) (model.DeleteRequest, error)
	GetDeleteRequest(ctx context.Context, id string) (model.DeleteRequestView, error)
	SetDeleteRequestStatus(ctx context.Context, id string, status model.RequestStatus) (model.DeleteRequest, error)
}

// ObjectStore holds the generated share images.
type ObjectStore interface {
	PutObject(bucket, name string, r io.Reader) (int64, error)
	RemoveObject(bucket, name string) error
}

// Service runs the application operations shared by the CLI, the editor and
// the web server.
type Service struct {
	repo    Repository
	objects ObjectStore
	log     *zap.Logger

	// renderOG is swapped in tests.
	renderOG func(grid.Grid) ([]byte, error)
}

// New returns a Service. objects may be nil, in which case share images are
// not generated.
func New(repo Repository, objects ObjectStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, objects: objects, log: log, renderOG: render.OGImagePNG}
}

// OGImageName is the object name of a mandalart's share image.
func OGImageName(id string) string { return id + ".png" }

// OGImageURL is the site-relative URL the share image is served from.
func OGImageURL(id string) string { return "/" + store.OGImagesBucket + "/" + OGImageName(id) }

// CreateInput is what a user submits to create a mandalart.
type CreateInput struct {
	UserID      string
	Grid        grid.Grid
	IsPublic    bool
	DisplayName string
	Tags        []string
}

// CreateMandalart validates and stores a new mandalart, then generates its
// share image. A failed image leaves the mandalart created without one.
func (s *Service) CreateMandalart(ctx context.Context, in CreateInput) (model.Mandalart, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return model.Mandalart{}, errors.New("missing user id")
	}
	if err := grid.Validate(in.Grid).Err(); err != nil {
		return model.Mandalart{}, err
	}
	m, err := s.repo.InsertMandalart(ctx, model.Mandalart{
		UserID:          in.UserID,
		Grid:            in.Grid,
		IsPublic:        in.IsPublic,
		UserDisplayName: in.DisplayName,
		Tags:            in.Tags,
	})
	if err != nil {
		return model.Mandalart{}, err
	}
	if url, err := s.publishOGImage(ctx, m); err != nil {
		s.log.Warn("og image generation failed", zap.String("mandalart", m.ID), zap.Error(err))
	} else if url != "" {
		m.OGImageURL = url
	}
	s.log.Info("mandalart created", zap.String("mandalart", m.ID), zap.Bool("public", m.IsPublic))
	return m, nil
}

// GetMandalart loads id, mapping a missing row to NotFoundError.
func (s *Service) GetMandalart(ctx context.Context, id string) (model.Mandalart, error) {
	m, err := s.repo.GetMandalart(ctx, id)
	if err != nil {
		return model.Mandalart{}, notFound(err, "mandalart", id)
	}
	return m, nil
}

// UpdateMandalart applies patch for the owner. Grid changes are validated
// and refresh the share image.
func (s *Service) UpdateMandalart(ctx context.Context, userID, id string, patch model.MandalartPatch) (model.Mandalart, error) {
	cur, err := s.GetMandalart(ctx, id)
	if err != nil {
		return model.Mandalart{}, err
	}
	if !perm.CanEditMandalart(userID, &cur) {
		return model.Mandalart{}, OwnerOnlyError{UserID: userID, OwnerUserID: cur.UserID, MandalartID: id}
	}
	if patch.Empty() {
		return cur, nil
	}
	next := patch.Apply(cur)
	if patch.Grid != nil {
		if err := grid.Validate(next.Grid).Err(); err != nil {
			return model.Mandalart{}, err
		}
	}
	updated, err := s.repo.UpdateMandalart(ctx, next)
	if err != nil {
		return model.Mandalart{}, notFound(err, "mandalart", id)
	}
	if patch.Grid != nil && updated.Grid != cur.Grid {
		if url, err := s.publishOGImage(ctx, updated); err != nil {
			s.log.Warn("og image regeneration failed", zap.String("mandalart", id), zap.Error(err))
		} else if url != "" {
			updated.OGImageURL = url
		}
	}
	return updated, nil
}

// DeleteMandalart removes the owner's mandalart and its share image.
func (s *Service) DeleteMandalart(ctx context.Context, userID, id string) error {
	cur, err := s.GetMandalart(ctx, id)
	if err != nil {
		return err
	}
	if !perm.CanEditMandalart(userID, &cur) {
		return OwnerOnlyError{UserID: userID, OwnerUserID: cur.UserID, MandalartID: id}
	}
	return s.deleteWithImage(ctx, id)
}

func (s *Service) deleteWithImage(ctx context.Context, id string) error {
	if err := s.repo.DeleteMandalart(ctx, id); err != nil {
		return notFound(err, "mandalart", id)
	}
	if s.objects != nil {
		if err := s.objects.RemoveObject(store.OGImagesBucket, OGImageName(id)); err != nil {
			s.log.Warn("og image removal failed", zap.String("mandalart", id), zap.Error(err))
		}
	}
	s.log.Info("mandalart deleted", zap.String("mandalart", id))
	return nil
}

// publishOGImage renders, uploads and links the share image of m.
// It returns "" when no object store is configured.
func (s *Service) publishOGImage(ctx context.Context, m model.Mandalart) (string, error) {
	if s.objects == nil {
		return "", nil
	}
	b, err := s.renderOG(m.Grid)
	if err != nil {
		return "", err
	}
	if _, err := s.objects.PutObject(store.OGImagesBucket, OGImageName(m.ID), bytes.NewReader(b)); err != nil {
		return "", err
	}
	url := OGImageURL(m.ID)
	if err := s.repo.SetOGImageURL(ctx, m.ID, url); err != nil {
		return "", err
	}
	return url, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError{Kind: kind, ID: id}
	}
	return err
}
