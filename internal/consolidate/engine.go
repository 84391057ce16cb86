package consolidate

import (
	"context"
	"log/slog"

	"shelfsync/internal/entity"
	"shelfsync/internal/logging"
)

// Named identifies an agent.
type Named interface {
	Name() string
}

// Source is the read side of one agent.
type Source interface {
	Named
	Categories(ctx context.Context) ([]entity.Entity, error)
	ItemInfo(ctx context.Context, path []string) (entity.Lookup, error)
}

// AgentReport records how one agent answered a category listing.
type AgentReport struct {
	Agent string
	// Items is the number of top-level entries the agent returned.
	Items int
	Err   error
}

// Reachable reports whether the agent answered.
func (r AgentReport) Reachable() bool {
	return r.Err == nil
}

// Contribution is one agent's raw answer for an item path.
type Contribution struct {
	Agent  string
	Lookup entity.Lookup
	Err    error
}

// Reachable reports whether the agent answered.
func (c Contribution) Reachable() bool {
	return c.Err == nil
}

// CategoriesResult is the consolidated category forest.
type CategoriesResult struct {
	Forest []entity.Entity
	Agents []AgentReport
}

// ItemResult is the consolidated view of one path plus what each agent said.
type ItemResult struct {
	Item          entity.Lookup
	Contributions []Contribution
}

// Engine consolidates agent responses.
type Engine struct {
	sources []Source
	policy  entity.Policy
	limit   int
	logger  *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPolicy selects the merge policy.
func WithPolicy(policy entity.Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithConcurrency bounds simultaneous agent calls. Zero or less means one
// call per source.
func WithConcurrency(limit int) Option {
	return func(e *Engine) {
		e.limit = limit
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New constructs an engine over sources, queried and folded in the given order.
func New(sources []Source, opts ...Option) *Engine {
	engine := &Engine{
		sources: append([]Source(nil), sources...),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.logger = logging.NewComponentLogger(engine.logger, "consolidate")
	return engine
}

// Categories lists every agent's categories and merges them.
func (e *Engine) Categories(ctx context.Context) CategoriesResult {
	results := FanOut(ctx, e.sources, e.limit, func(ctx context.Context, s Source) ([]entity.Entity, error) {
		return s.Categories(ctx)
	})

	reports := make([]AgentReport, len(results))
	trees := make([][]entity.Entity, 0, len(results))
	for i, res := range results {
		name := e.sources[i].Name()
		reports[i] = AgentReport{Agent: name, Items: len(res.Value), Err: res.Err}
		if res.Err != nil {
			e.warnAgent(ctx, name, "categories", res.Err)
			continue
		}
		trees = append(trees, res.Value)
	}

	forest := FoldCategories(trees, e.policy)
	logging.WithContext(ctx, e.logger).Debug("categories merged",
		logging.Int("agent_count", len(e.sources)),
		logging.Int("reachable_agents", len(trees)),
		logging.Int("item_count", len(forest)),
	)
	return CategoriesResult{Forest: forest, Agents: reports}
}

// ItemInfo asks every agent for path and merges the answers.
func (e *Engine) ItemInfo(ctx context.Context, path []string) ItemResult {
	results := FanOut(ctx, e.sources, e.limit, func(ctx context.Context, s Source) (entity.Lookup, error) {
		return s.ItemInfo(ctx, path)
	})

	contributions := make([]Contribution, len(results))
	lookups := make([]entity.Lookup, 0, len(results))
	for i, res := range results {
		name := e.sources[i].Name()
		if res.Err != nil {
			e.warnAgent(ctx, name, "item", res.Err)
			contributions[i] = Contribution{Agent: name, Lookup: entity.Missing(), Err: res.Err}
			continue
		}
		contributions[i] = Contribution{Agent: name, Lookup: res.Value}
		lookups = append(lookups, res.Value)
	}

	item := FoldItems(lookups, e.policy)
	logging.WithContext(ctx, e.logger).Debug("item merged",
		logging.Path(path),
		logging.Bool("found", item.Found),
		logging.Int("reachable_agents", len(lookups)),
	)
	return ItemResult{Item: item, Contributions: contributions}
}

// FoldCategories merges per-agent forests. Every node of every tree counts
// as one copy.
func FoldCategories(trees [][]entity.Entity, p entity.Policy) []entity.Entity {
	forest := make(map[string]entity.Entity)
	for _, tree := range trees {
		counted := make([]entity.Entity, len(tree))
		for i, item := range tree {
			counted[i] = item.WithCopyCount(1)
		}
		entity.MergeForest(forest, counted, p)
	}
	return entity.Flatten(forest, p)
}

// FoldItems merges per-agent lookups for the same path, starting from
// Missing. Every found node counts as one copy.
func FoldItems(lookups []entity.Lookup, p entity.Policy) entity.Lookup {
	acc := entity.Missing()
	for _, lookup := range lookups {
		item, ok := lookup.Get()
		if !ok {
			continue
		}
		acc = entity.Combine(acc, entity.Present(item.WithCopyCount(1)), p)
	}
	if item, ok := acc.Get(); ok {
		entity.SortTree(item.Items, p.Less)
	}
	return acc
}

func (e *Engine) warnAgent(ctx context.Context, agent, operation string, err error) {
	ctx = contextFor(ctx, agent, operation)
	attrs := append(logging.ErrorAttrs(err),
		logging.String(logging.FieldErrorHint, "check that the agent is running and its api key matches"),
		logging.String(logging.FieldImpact, "agent contributes nothing to this view"),
	)
	logging.WarnWithContext(logging.WithContext(ctx, e.logger), "agent unavailable", "agent_unavailable", attrs...)
}
