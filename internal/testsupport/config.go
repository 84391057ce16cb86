package testsupport

import (
	"path/filepath"
	"testing"

	"shelfsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options. Agents are
// added with WithAgents or WithAgent.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Manager.Bind = "127.0.0.1:0"
	cfgVal.Agents = nil

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAgents registers every fake agent in order.
func WithAgents(agents ...*FakeAgent) ConfigOption {
	return func(b *configBuilder) {
		for _, agent := range agents {
			b.cfg.Agents = append(b.cfg.Agents, agent.ConfigAgent())
		}
	}
}

// WithAgent registers an agent by address. Useful for unreachable hosts.
func WithAgent(name, hostname, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Agents = append(b.cfg.Agents, config.Agent{Name: name, Hostname: hostname, APIKey: apiKey})
	}
}

// WithMinimumCopies overrides the replica threshold.
func WithMinimumCopies(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manager.MinimumCopies = n
	}
}

// WithSortOrder selects the child comparator.
func WithSortOrder(order string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manager.SortOrder = order
	}
}

// WithJournal toggles the mutation journal.
func WithJournal(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = enabled
	}
}

// WithAPIToken sets the bearer token required by the daemon API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manager.APIToken = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
