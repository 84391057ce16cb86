package manager

import (
	"context"
	"fmt"
	"strings"

	"shelfsync/internal/entity"
	"shelfsync/internal/identity"
	"shelfsync/internal/ignorestatus"
	"shelfsync/internal/logging"
	"shelfsync/internal/redundancy"
	"shelfsync/internal/services"
	"shelfsync/internal/syncstatus"
)

// Status reports the configured agents and thresholds. It makes no agent calls.
func (m *Manager) Status() StatusView {
	agents := make([]AgentInfo, len(m.cfg.Agents))
	for i, agent := range m.cfg.Agents {
		agents[i] = AgentInfo{Name: agent.Name, Hostname: agent.Hostname}
	}
	return StatusView{
		Version:       m.version,
		MinimumCopies: m.minimum,
		Agents:        agents,
		Journal:       m.journal != nil,
	}
}

// Categories returns the consolidated forest. With a non-empty path it
// returns the children of the node at path instead; a path nobody reports
// yields services.ErrNotFound.
func (m *Manager) Categories(ctx context.Context, path []string) (CategoriesView, error) {
	ctx, requestID := m.begin(ctx, "categories")
	clean := entity.CleanPath(path)

	result := m.engine.Categories(ctx)
	forest := result.Forest
	if len(clean) > 0 {
		node, ok := entity.Find(forest, clean)
		if !ok {
			return CategoriesView{}, services.Wrap(services.ErrNotFound, "manager", "categories", fmt.Sprintf("no agent reports %q", strings.Join(clean, "/")), nil)
		}
		forest = node.Items
	}

	mismatches := identity.Check(forest)
	logger := logging.WithContext(ctx, m.logger)
	for _, mismatch := range mismatches {
		logging.WarnWithContext(logger, "ids differ only by normalization or case", "identity_mismatch",
			logging.String("parent", mismatch.Path()),
			logging.String("ids", strings.Join(mismatch.IDs, " | ")),
			logging.String(logging.FieldErrorHint, "rename one copy so every agent uses the same name"),
			logging.String(logging.FieldImpact, "items are listed and counted separately"),
		)
	}

	return CategoriesView{
		RequestID:       requestID,
		Path:            clean,
		MinimumCopies:   m.minimum,
		UnderReplicated: redundancy.Count(forest, m.minimum),
		Forest:          redundancy.Annotate(forest, m.minimum),
		Agents:          result.Agents,
		Mismatches:      mismatches,
	}, nil
}

// Item consolidates path across agents and attaches each agent's sync and
// ignore status.
func (m *Manager) Item(ctx context.Context, path []string) (ItemView, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return ItemView{}, err
	}
	ctx, requestID := m.begin(ctx, "item")

	result := m.engine.ItemInfo(ctx, clean)
	statuses := syncstatus.Calculate(result.Contributions)
	ignored, err := m.ignore.Check(ctx, clean)
	if err != nil {
		return ItemView{}, err
	}
	byAgent := ignorestatus.ByAgent(ignored)

	agents := make([]AgentItem, len(result.Contributions))
	for i, c := range result.Contributions {
		agents[i] = AgentItem{
			Agent:  c.Agent,
			Item:   c.Lookup,
			Err:    c.Err,
			Status: statuses[i].Status,
			Ignore: byAgent[c.Agent],
		}
	}

	view := ItemView{
		RequestID:     requestID,
		Path:          clean,
		MinimumCopies: m.minimum,
		Item:          result.Item,
		Agents:        agents,
	}
	if item, ok := result.Item.Get(); ok {
		view.HasInsufficientCopies = redundancy.HasInsufficientCopies(item, m.minimum)
	}
	return view, nil
}

// AgentDetail compares agent's children at path with the union across agents.
func (m *Manager) AgentDetail(ctx context.Context, agent string, path []string) (AgentDetailView, error) {
	client, err := m.client(agent)
	if err != nil {
		return AgentDetailView{}, err
	}
	agent = client.Name()
	clean, err := cleanPath(path)
	if err != nil {
		return AgentDetailView{}, err
	}
	ctx, requestID := m.begin(ctx, "agent_detail")

	result := m.engine.ItemInfo(ctx, clean)
	children, _ := syncstatus.CompareChildren(agent, result.Contributions)

	view := AgentDetailView{RequestID: requestID, Agent: agent, Path: clean, Children: children}
	statuses := syncstatus.Calculate(result.Contributions)
	for i, c := range result.Contributions {
		if c.Agent == agent {
			view.Status = statuses[i].Status
			view.Item = c.Lookup
			view.Err = c.Err
			break
		}
	}
	return view, nil
}
