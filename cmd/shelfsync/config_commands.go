package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelfsync/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the agent configuration",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite, toStdout bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an annotated sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if toStdout {
				_, err := io.WriteString(out, config.Sample())
				return err
			}

			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Add one [[agents]] entry per node; keys may come from SHELFSYNC_AGENT_<NAME>_API_KEY.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the sample instead of writing it")
	return cmd
}

func initTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(path)
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and list the agents it defines",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Agents: %d (minimum copies %d)\n", len(cfg.Agents), cfg.Manager.MinimumCopies)
			fmt.Fprintf(out, "Agent timeout: %s, sort order: %s, journal: %s\n",
				cfg.AgentTimeout(), cfg.Manager.SortOrder, yesNo(cfg.Journal.Enabled))

			rows := make([][]string, len(cfg.Agents))
			var keyless []string
			for i, agent := range cfg.Agents {
				key := "set"
				if agent.APIKey == "" {
					key = "missing"
					keyless = append(keyless, agent.Name)
				}
				rows[i] = []string{strconv.Itoa(i + 1), agent.Name, agent.Hostname, key}
			}
			fmt.Fprintln(out, renderTable([]tableColumn{
				{header: "#", numeric: true},
				{header: "Agent"},
				{header: "Hostname"},
				{header: "API Key"},
			}, rows))

			for _, name := range keyless {
				fmt.Fprintln(out, paint(fmt.Sprintf("warning: agent %s has no api_key; set it or export %s", name, config.AgentKeyEnv(name)), ansiYellow, colorize))
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
