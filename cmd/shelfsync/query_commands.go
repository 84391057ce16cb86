package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelfsync/internal/api"
	"shelfsync/internal/consolidate"
	"shelfsync/internal/identity"
	"shelfsync/internal/manager"
	"shelfsync/internal/services"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories [path...]",
		Short: "List the consolidated library, or the children of a path",
		Example: "  shelfsync categories\n" +
			"  shelfsync categories movies\n" +
			"  shelfsync categories tv/Show",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, false, func(mgr *manager.Manager) error {
				view, err := mgr.Categories(cmd.Context(), pathFromArgs(args))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromCategories(view))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				rows := make([][]string, len(view.Forest))
				for i, node := range view.Forest {
					rows[i] = []string{
						node.Entity.Name,
						kindLabel(node.Entity.Leaf),
						formatSize(node.Entity.SizeKB),
						strconv.Itoa(int(node.Entity.CopyCount)),
						redundancyLabel(node.HasInsufficientCopies, colorize),
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No items reported")
				} else {
					fmt.Fprintln(out, renderTable([]tableColumn{
						{header: "Name"},
						{header: "Type"},
						{header: "Size", numeric: true},
						{header: "Copies", numeric: true},
						{header: "Redundancy"},
					}, rows))
				}
				if view.UnderReplicated > 0 {
					line := fmt.Sprintf("%d item(s) below %d copies", view.UnderReplicated, view.MinimumCopies)
					fmt.Fprintln(out, paint(line, ansiRed, colorize))
				}
				printAgentWarnings(out, view.Agents, colorize)
				printIdentityWarnings(out, view.Mismatches, colorize)
				return nil
			})
		},
	}
}

func newItemCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "item <path...>",
		Short:   "Show one path across every agent",
		Example: "  shelfsync item movies \"Movie A\"\n  shelfsync item \"movies/Movie A\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, false, func(mgr *manager.Manager) error {
				view, err := mgr.Item(cmd.Context(), pathFromArgs(args))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromItem(view))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				path := strings.Join(view.Path, "/")

				item, found := view.Item.Get()
				if !found {
					fmt.Fprintf(out, "No agent reports %s\n", path)
				} else {
					fmt.Fprintf(out, "Path:       %s\n", path)
					fmt.Fprintf(out, "Size:       %s\n", formatSize(item.SizeKB))
					fmt.Fprintf(out, "Copies:     %d (minimum %d)\n", item.CopyCount, view.MinimumCopies)
					fmt.Fprintf(out, "Redundancy: %s\n", redundancyLabel(view.HasInsufficientCopies, colorize))
				}

				rows := make([][]string, len(view.Agents))
				for i, row := range view.Agents {
					rows[i] = []string{
						row.Agent,
						syncLabel(row.Status, colorize),
						formatSize(row.Item.SizeKB()),
						ignoredLabel(row),
						errorLabel(row.Err),
					}
				}
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "Agent"},
					{header: "Sync"},
					{header: "Size", numeric: true},
					{header: "Ignored"},
					{header: "Error"},
				}, rows))
				return nil
			})
		},
	}
}

func newDetailCommand(ctx *commandContext) *cobra.Command {
	var agent string

	cmd := &cobra.Command{
		Use:     "detail --agent <name> <path...>",
		Short:   "Compare one agent's children at a path against every agent",
		Example: "  shelfsync detail --agent nas-2 movies",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, false, func(mgr *manager.Manager) error {
				view, err := mgr.AgentDetail(cmd.Context(), agent, pathFromArgs(args))
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromAgentDetail(view))
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintf(out, "%s at %s: %s\n", view.Agent, strings.Join(view.Path, "/"), syncLabel(view.Status, colorize))
				if view.Err != nil {
					fmt.Fprintf(out, "Error: %s\n", errorLabel(view.Err))
				}
				rows := make([][]string, len(view.Children))
				for i, child := range view.Children {
					partial := ""
					if child.Partial {
						partial = paint("partial", ansiYellow, colorize)
					}
					rows[i] = []string{
						child.Name,
						yesNo(child.Present),
						formatSize(child.SizeKB),
						strconv.Itoa(child.Items),
						partial,
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No children reported")
					return nil
				}
				fmt.Fprintln(out, renderTable([]tableColumn{
					{header: "Name"},
					{header: "Present"},
					{header: "Size", numeric: true},
					{header: "Items", numeric: true},
					{header: "Note"},
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&agent, "agent", "a", "", "Agent to inspect")
	_ = cmd.MarkFlagRequired("agent")
	return cmd
}

func printAgentWarnings(out io.Writer, reports []consolidate.AgentReport, colorize bool) {
	for _, report := range reports {
		if report.Reachable() {
			continue
		}
		line := fmt.Sprintf("warning: agent %s unavailable (%s): %v", report.Agent, services.Kind(report.Err), report.Err)
		fmt.Fprintln(out, paint(line, ansiYellow, colorize))
	}
}

func printIdentityWarnings(out io.Writer, mismatches []identity.Mismatch, colorize bool) {
	for _, mismatch := range mismatches {
		line := fmt.Sprintf("warning: under %s the ids %s differ only by normalization or case",
			mismatch.Path(), strings.Join(quoteAll(mismatch.IDs), ", "))
		fmt.Fprintln(out, paint(line, ansiYellow, colorize))
	}
}

func ignoredLabel(row manager.AgentItem) string {
	if !row.Ignore.Reachable {
		return "unknown"
	}
	return yesNo(row.Ignore.Ignored)
}

func errorLabel(err error) string {
	if err == nil {
		return ""
	}
	if kind := services.Kind(err); kind != "unknown" {
		return kind + ": " + err.Error()
	}
	return err.Error()
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = strconv.Quote(value)
	}
	return out
}
