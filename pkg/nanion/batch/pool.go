package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// newPool returns an errgroup limited to workers concurrent tasks.
func newPool(ctx context.Context, workers int) (*errgroup.Group, error) {
	if workers < 1 {
		return nil, &BatchSetupError{
			Workers: workers,
			Err:     fmt.Errorf("%w: need at least one worker", ErrPoolUnavailable),
		}
	}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return g, nil
}
