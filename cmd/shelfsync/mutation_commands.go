package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelfsync/internal/agentclient"
	"shelfsync/internal/api"
	"shelfsync/internal/journal"
	"shelfsync/internal/manager"
)

type mutation func(mgr *manager.Manager, ctx context.Context, agent string, path []string) (manager.MutationView, error)

func newIgnoreCommand(ctx *commandContext) *cobra.Command {
	var agent string

	cmd := &cobra.Command{
		Use:     "ignore --agent <name> <path...>",
		Short:   "Add a path to one agent's exclusion list",
		Example: "  shelfsync ignore --agent nas-1 movies \"Movie A\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, "Ignored", agent, args, (*manager.Manager).Ignore)
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Agent that should ignore the path")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var agent string
	var confirmed bool

	cmd := &cobra.Command{
		Use:     "delete --agent <name> --yes <path...>",
		Short:   "Delete a path from one agent's disk",
		Example: "  shelfsync delete --agent nas-2 --yes movies \"Movie A\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to delete %s from %s without --yes", strings.Join(pathFromArgs(args), "/"), agent)
			}
			return runMutation(cmd, ctx, "Deleted", agent, args, (*manager.Manager).Delete)
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Agent to delete from")
	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm the deletion")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func runMutation(cmd *cobra.Command, ctx *commandContext, verb, agent string, args []string, fn mutation) error {
	return ctx.withManager(cmd, true, func(mgr *manager.Manager) error {
		view, err := fn(mgr, cmd.Context(), agent, pathFromArgs(args))
		if ctx.jsonOutput() && view.Agent != "" {
			if writeErr := writeJSON(cmd, api.FromMutation(view)); writeErr != nil {
				return writeErr
			}
		}
		if err != nil {
			if message := agentclient.AgentMessage(err); message != "" {
				return fmt.Errorf("%s refused %s: %s", view.Agent, strings.Join(view.Path, "/"), message)
			}
			return err
		}
		if ctx.jsonOutput() {
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s on %s\n", verb, strings.Join(view.Path, "/"), view.Agent)
		if view.AgentPath != "" {
			fmt.Fprintf(out, "Agent path: %s\n", view.AgentPath)
		}
		return nil
	})
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var agent string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List forwarded ignore and delete requests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, true, func(mgr *manager.Manager) error {
				entries, err := mgr.History(cmd.Context(), journal.Filter{Agent: agent, Limit: limit})
				if errors.Is(err, manager.ErrJournalDisabled) {
					return fmt.Errorf("journal is disabled; set [journal] enabled = true to record mutations")
				}
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromHistory(entries))
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No mutations recorded")
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, len(entries))
				for i, entry := range entries {
					result := paint("ok", ansiGreen, colorize)
					if !entry.Success {
						result = paint("failed", ansiRed, colorize)
						if entry.Message != "" {
							result += ": " + entry.Message
						}
					}
					rows[i] = []string{
						strconv.FormatInt(entry.ID, 10),
						entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
						entry.Agent,
						string(entry.Operation),
						entry.Path(),
						result,
					}
				}
				fmt.Fprintln(out, renderTable(historyColumns, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Only show entries for this agent")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum entries to show (default 50)")
	return cmd
}

var historyColumns = []tableColumn{
	{header: "ID", numeric: true},
	{header: "Time"},
	{header: "Agent"},
	{header: "Operation"},
	{header: "Path"},
	{header: "Result"},
}
