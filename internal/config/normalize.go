package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeManager()
	c.normalizeAgents()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeManager() {
	c.Manager.Bind = strings.TrimSpace(c.Manager.Bind)
	if c.Manager.Bind == "" {
		c.Manager.Bind = defaultBind
	}
	c.Manager.APIToken = strings.TrimSpace(c.Manager.APIToken)
	if c.Manager.APIToken == "" {
		if value, ok := os.LookupEnv("SHELFSYNC_API_TOKEN"); ok {
			c.Manager.APIToken = strings.TrimSpace(value)
		}
	}
	c.Manager.SortOrder = strings.ToLower(strings.TrimSpace(c.Manager.SortOrder))
	if c.Manager.SortOrder == "" {
		c.Manager.SortOrder = Default().Manager.SortOrder
	}
	if c.Manager.AgentTimeoutSeconds == 0 {
		c.Manager.AgentTimeoutSeconds = defaultAgentTimeoutSeconds
	}
}

func (c *Config) normalizeAgents() {
	for i := range c.Agents {
		agent := &c.Agents[i]
		agent.Name = strings.TrimSpace(agent.Name)
		agent.Hostname = strings.TrimRight(strings.TrimSpace(agent.Hostname), "/")
		agent.APIKey = strings.TrimSpace(agent.APIKey)
		if agent.APIKey == "" && agent.Name != "" {
			if value, ok := os.LookupEnv(AgentKeyEnv(agent.Name)); ok {
				agent.APIKey = strings.TrimSpace(value)
			}
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// AgentKeyEnv is the environment variable consulted when an agent has no
// api_key in the file, e.g. "nas 1" -> SHELFSYNC_AGENT_NAS_1_API_KEY.
func AgentKeyEnv(name string) string {
	var b strings.Builder
	b.WriteString("SHELFSYNC_AGENT_")
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString("_API_KEY")
	return b.String()
}
