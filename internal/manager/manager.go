package manager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"shelfsync/internal/agentclient"
	"shelfsync/internal/config"
	"shelfsync/internal/consolidate"
	"shelfsync/internal/entity"
	"shelfsync/internal/ignorestatus"
	"shelfsync/internal/journal"
	"shelfsync/internal/logging"
	"shelfsync/internal/services"
)

var (
	// ErrUnknownAgent is returned when no configured agent has the requested name.
	ErrUnknownAgent = fmt.Errorf("%w: unknown agent", services.ErrValidation)
	// ErrInvalidPath is returned when a path has no non-empty component.
	ErrInvalidPath = fmt.Errorf("%w: path has no non-empty component", services.ErrValidation)
	// ErrJournalDisabled is returned by History when no journal is attached.
	ErrJournalDisabled = fmt.Errorf("%w: journal disabled", services.ErrConfiguration)
)

// Journal is the subset of journal.Store used by the manager.
type Journal interface {
	Record(ctx context.Context, entry journal.Entry) (int64, error)
	List(ctx context.Context, filter journal.Filter) ([]journal.Entry, error)
}

// Manager composes consolidation, redundancy, sync-status and ignore-status
// for the upward API. It holds no per-request state.
type Manager struct {
	cfg      *config.Config
	byName   map[string]*agentclient.Client
	engine   *consolidate.Engine
	ignore   *ignorestatus.Batcher
	journal  Journal
	minimum  int
	version  string
	logger   *slog.Logger
	doer     agentclient.HTTPDoer
	newReqID func() string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithHTTPClient overrides the HTTP client used for every agent.
func WithHTTPClient(doer agentclient.HTTPDoer) Option {
	return func(m *Manager) {
		m.doer = doer
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithJournal records forwarded mutations.
func WithJournal(j Journal) Option {
	return func(m *Manager) {
		m.journal = j
	}
}

// WithVersion sets the version reported by Status.
func WithVersion(version string) Option {
	return func(m *Manager) {
		m.version = version
	}
}

// New builds a manager for every agent in cfg, in configuration order.
func New(cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "manager", "init", "config is required", nil)
	}
	less, err := entity.ComparatorFor(cfg.Manager.SortOrder)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "manager", "init", "resolve sort order", err)
	}

	m := &Manager{
		cfg:      cfg,
		byName:   make(map[string]*agentclient.Client, len(cfg.Agents)),
		minimum:  cfg.Manager.MinimumCopies,
		version:  "dev",
		logger:   logging.NewNop(),
		newReqID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "manager")

	clientOpts := []agentclient.Option{
		agentclient.WithTimeout(cfg.AgentTimeout()),
		agentclient.WithLogger(m.logger),
	}
	if m.doer != nil {
		clientOpts = append(clientOpts, agentclient.WithHTTPClient(m.doer))
	}

	sources := make([]consolidate.Source, 0, len(cfg.Agents))
	checkers := make([]ignorestatus.Checker, 0, len(cfg.Agents))
	for _, agent := range cfg.Agents {
		client := agentclient.New(agentclient.Endpoint{Name: agent.Name, Hostname: agent.Hostname, APIKey: agent.APIKey}, clientOpts...)
		m.byName[agent.Name] = client
		sources = append(sources, client)
		checkers = append(checkers, client)
	}

	m.engine = consolidate.New(sources,
		consolidate.WithPolicy(entity.Policy{Less: less}),
		consolidate.WithConcurrency(cfg.Manager.MaxConcurrency),
		consolidate.WithLogger(m.logger),
	)
	m.ignore = ignorestatus.New(checkers, cfg.Manager.MaxConcurrency, m.logger)
	return m, nil
}

// MinimumCopies is the replica threshold used for redundancy flags.
func (m *Manager) MinimumCopies() int {
	return m.minimum
}

// begin tags ctx with a request id (unless the caller supplied one) and the
// operation name.
func (m *Manager) begin(ctx context.Context, operation string) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	id, ok := services.RequestIDFromContext(ctx)
	if !ok {
		id = m.newReqID()
		ctx = services.WithRequestID(ctx, id)
	}
	return services.WithOperation(ctx, operation), id
}

func (m *Manager) client(name string) (*agentclient.Client, error) {
	client, ok := m.byName[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAgent, name)
	}
	return client, nil
}

func cleanPath(path []string) ([]string, error) {
	clean := entity.CleanPath(path)
	if len(clean) == 0 {
		return nil, ErrInvalidPath
	}
	return clean, nil
}
