package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunBatch runs independent requests concurrently, at most limit at a time
// (limit <= 0 means unbounded). Each run owns its own portfolio and generator.
// Results keep the order of reqs; the first failure cancels the rest.
func (e *Engine) RunBatch(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	results := make([]*Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		i, req := i, req // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			res, err := e.Run(gctx, req, nil)
			if err != nil {
				return fmt.Errorf("request %d (%s): %w", i, req.Strategy.Type, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
