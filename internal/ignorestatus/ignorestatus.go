// Package ignorestatus asks every agent whether a path is on its exclusion
// list, one batched request per agent.
package ignorestatus

import (
	"context"
	"log/slog"

	"shelfsync/internal/consolidate"
	"shelfsync/internal/entity"
	"shelfsync/internal/logging"
	"shelfsync/internal/services"
)

// Checker is the ignore-status side of one agent.
type Checker interface {
	consolidate.Named
	IgnoreStatus(ctx context.Context, path []string) (bool, error)
}

// Status is one agent's answer. Ignored is false whenever the agent could not
// be asked; Reachable tells that case apart from a real negative.
type Status struct {
	Agent     string
	Ignored   bool
	Reachable bool
	Err       error
}

// Batcher dispatches ignore-status lookups.
type Batcher struct {
	checkers []Checker
	limit    int
	logger   *slog.Logger
}

// New constructs a batcher over checkers, answered in the given order.
func New(checkers []Checker, limit int, logger *slog.Logger) *Batcher {
	return &Batcher{
		checkers: append([]Checker(nil), checkers...),
		limit:    limit,
		logger:   logging.NewComponentLogger(logger, "ignorestatus"),
	}
}

// Check asks every agent about path concurrently. The path must have at least
// one non-empty component; its first becomes the category and the rest the
// folder path.
func (b *Batcher) Check(ctx context.Context, path []string) ([]Status, error) {
	if _, ok := entity.TargetFor(path); !ok {
		return nil, services.Wrap(services.ErrValidation, "ignorestatus", "check", "path has no non-empty component", nil)
	}
	clean := entity.CleanPath(path)

	results := consolidate.FanOut(ctx, b.checkers, b.limit, func(ctx context.Context, c Checker) (bool, error) {
		return c.IgnoreStatus(ctx, clean)
	})

	out := make([]Status, len(results))
	for i, res := range results {
		name := b.checkers[i].Name()
		if res.Err != nil {
			agentCtx := services.WithAgent(ctx, name)
			attrs := append(logging.ErrorAttrs(res.Err),
				logging.String(logging.FieldErrorHint, "check that the agent is running and its api key matches"),
				logging.String(logging.FieldImpact, "ignore status shown as not ignored"),
			)
			logging.WarnWithContext(logging.WithContext(agentCtx, b.logger), "ignore status unavailable", "ignore_status_unavailable", attrs...)
			out[i] = Status{Agent: name, Err: res.Err}
			continue
		}
		out[i] = Status{Agent: name, Ignored: res.Value, Reachable: true}
	}
	return out, nil
}

// ByAgent indexes statuses by agent name.
func ByAgent(statuses []Status) map[string]Status {
	out := make(map[string]Status, len(statuses))
	for _, s := range statuses {
		out[s.Agent] = s
	}
	return out
}
