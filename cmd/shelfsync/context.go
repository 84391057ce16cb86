package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shelfsync/internal/config"
	"shelfsync/internal/entity"
	"shelfsync/internal/journal"
	"shelfsync/internal/logging"
	"shelfsync/internal/manager"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withManager builds a manager for one command, logging to stderr and the
// shared log file. The journal is opened only when the command records or
// reads mutations.
func (c *commandContext) withManager(cmd *cobra.Command, useJournal bool, fn func(*manager.Manager) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	opts := []manager.Option{manager.WithLogger(logger), manager.WithVersion(version)}
	if useJournal && cfg.Journal.Enabled {
		store, err := journal.Open(cfg)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer store.Close()
		opts = append(opts, manager.WithJournal(store))
	}

	mgr, err := manager.New(cfg, opts...)
	if err != nil {
		return err
	}
	return fn(mgr)
}

// pathFromArgs accepts either one slash-separated path or one component per
// argument.
func pathFromArgs(args []string) []string {
	return entity.SplitPath(strings.Join(args, "/"))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
