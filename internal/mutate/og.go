package mutate

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mandalart/internal/model"
)

// DefaultRegenerateConcurrency bounds parallel share image renders.
const DefaultRegenerateConcurrency = 4

// RegenerateResult lists the outcome per mandalart id.
type RegenerateResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed"`
}

// RegenerateOGImages re-renders the share images of ids, or of every
// mandalart when ids is empty. Per-mandalart failures are collected in the
// result; only cancellation aborts the run.
func (s *Service) RegenerateOGImages(ctx context.Context, ids []string, concurrency int) (RegenerateResult, error) {
	res := RegenerateResult{Updated: []string{}, Failed: map[string]string{}}
	if s.objects == nil {
		return res, errors.New("no object store configured")
	}
	if concurrency <= 0 {
		concurrency = DefaultRegenerateConcurrency
	}

	var targets []model.Mandalart
	if len(ids) == 0 {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return res, err
		}
		targets = all
	} else {
		for _, id := range ids {
			m, err := s.GetMandalart(ctx, id)
			if err != nil {
				res.Failed[id] = err.Error()
				continue
			}
			targets = append(targets, m)
		}
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, m := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := s.publishOGImage(gctx, m)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn("og image regeneration failed", zap.String("mandalart", m.ID), zap.Error(err))
				res.Failed[m.ID] = err.Error()
				return nil
			}
			res.Updated = append(res.Updated, m.ID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	sort.Strings(res.Updated)
	s.log.Info("og images regenerated", zap.Int("updated", len(res.Updated)), zap.Int("failed", len(res.Failed)))
	return res, nil
}
