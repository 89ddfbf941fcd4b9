package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Limit resolves a worker count: values below 1 mean GOMAXPROCS.
func Limit(workers int) int {
	if workers < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// ForEach runs action for every element with at most workers goroutines in
// flight and waits for all of them. The first error cancels ctx for the
// remaining actions and is returned.
func ForEach[T any](ctx context.Context, items []T, workers int, action func(context.Context, int, T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Limit(workers))

	for idx, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return action(ctx, idx, item)
		})
	}

	return g.Wait()
}
