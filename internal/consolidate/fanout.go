package consolidate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"shelfsync/internal/services"
)

// Outcome is one source's answer from FanOut.
type Outcome[T any] struct {
	Value T
	Err   error
}

// FanOut runs fn once per source with at most limit calls in flight (zero or
// less means one per source). Each task writes only its own slot and always
// returns nil to the group, so one failure never cancels the others. The
// context passed to fn carries the source's agent name.
func FanOut[S Named, T any](ctx context.Context, sources []S, limit int, fn func(context.Context, S) (T, error)) []Outcome[T] {
	results := make([]Outcome[T], len(sources))
	if len(sources) == 0 {
		return results
	}
	if limit <= 0 || limit > len(sources) {
		limit = len(sources)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, source := range sources {
		g.Go(func() error {
			callCtx := services.WithAgent(ctx, source.Name())
			if err := callCtx.Err(); err != nil {
				results[i] = Outcome[T]{Err: services.Wrap(services.ErrTransport, "consolidate", source.Name(), "request cancelled", err)}
				return nil
			}
			value, err := fn(callCtx, source)
			results[i] = Outcome[T]{Value: value, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
