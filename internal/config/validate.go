package config

import (
	"errors"
	"fmt"
	"strings"

	"shelfsync/internal/entity"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateManager(); err != nil {
		return err
	}
	if err := c.validateAgents(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateManager() error {
	if c.Manager.MinimumCopies < 1 || c.Manager.MinimumCopies > 255 {
		return errors.New("manager.minimum_copies must be between 1 and 255")
	}
	if c.Manager.AgentTimeoutSeconds <= 0 {
		return errors.New("manager.agent_timeout_seconds must be positive")
	}
	if c.Manager.MaxConcurrency < 0 {
		return errors.New("manager.max_concurrency must be >= 0")
	}
	if _, err := entity.ComparatorFor(c.Manager.SortOrder); err != nil {
		return fmt.Errorf("manager.sort_order: %w", err)
	}
	return nil
}

func (c *Config) validateAgents() error {
	if len(c.Agents) == 0 {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("at least one [[agents]] entry is required; edit %s (create with 'shelfsync config init')", defaultPath)
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for i, agent := range c.Agents {
		if agent.Name == "" {
			return fmt.Errorf("agents[%d].name must be set", i)
		}
		if _, dup := seen[agent.Name]; dup {
			return fmt.Errorf("agents[%d].name %q is duplicated", i, agent.Name)
		}
		seen[agent.Name] = struct{}{}
		if strings.TrimSpace(agent.Hostname) == "" {
			return fmt.Errorf("agents[%d].hostname must be set for %q", i, agent.Name)
		}
	}
	return nil
}
