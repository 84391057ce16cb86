package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfsync/internal/api"
	"shelfsync/internal/manager"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configured agents and thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, true, func(mgr *manager.Manager) error {
				view := mgr.Status()
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromStatus(view))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Version:        %s\n", view.Version)
				fmt.Fprintf(out, "Minimum copies: %d\n", view.MinimumCopies)
				fmt.Fprintf(out, "Journal:        %s\n", yesNo(view.Journal))
				rows := make([][]string, len(view.Agents))
				for i, agent := range view.Agents {
					rows[i] = []string{agent.Name, agent.Hostname}
				}
				fmt.Fprintln(out, renderTable([]tableColumn{{header: "Agent"}, {header: "Hostname"}}, rows))
				return nil
			})
		},
	}
}
