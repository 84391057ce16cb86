package api

import (
	"shelfsync/internal/entity"
	"shelfsync/internal/journal"
	"shelfsync/internal/manager"
	"shelfsync/internal/redundancy"
	"shelfsync/internal/services"
)

// FromStatus converts the manager status view.
func FromStatus(view manager.StatusView) StatusResponse {
	agents := make([]AgentInfo, len(view.Agents))
	for i, agent := range view.Agents {
		agents[i] = AgentInfo{Name: agent.Name, Hostname: agent.Hostname}
	}
	return StatusResponse{
		Version:       view.Version,
		MinimumCopies: view.MinimumCopies,
		Agents:        agents,
		Journal:       view.Journal,
	}
}

// FromEntity converts an entity tree. Children are never nil so clients can
// iterate without checks.
func FromEntity(e entity.Entity) Entity {
	out := Entity{
		ID:        e.ID,
		Name:      e.Name,
		SizeKB:    e.SizeKB,
		Leaf:      e.Leaf,
		CopyCount: e.CopyCount,
		Items:     make([]Entity, len(e.Items)),
	}
	for i, child := range e.Items {
		out.Items[i] = FromEntity(child)
	}
	return out
}

// FromLookup returns nil for a missing lookup.
func FromLookup(lookup entity.Lookup) *Entity {
	item, ok := lookup.Get()
	if !ok {
		return nil
	}
	dto := FromEntity(item)
	return &dto
}

// FromFlagged converts an annotated forest.
func FromFlagged(forest []redundancy.Flagged) []Node {
	out := make([]Node, len(forest))
	for i, node := range forest {
		out[i] = Node{
			ID:                    node.Entity.ID,
			Name:                  node.Entity.Name,
			SizeKB:                node.Entity.SizeKB,
			Leaf:                  node.Entity.Leaf,
			CopyCount:             node.Entity.CopyCount,
			HasInsufficientCopies: node.HasInsufficientCopies,
			Items:                 FromFlagged(node.Items),
		}
	}
	return out
}

// FromCategories converts a categories view.
func FromCategories(view manager.CategoriesView) CategoriesResponse {
	agents := make([]AgentReachability, len(view.Agents))
	for i, report := range view.Agents {
		agents[i] = AgentReachability{
			Agent:     report.Agent,
			Reachable: report.Reachable(),
			Items:     report.Items,
		}
		if report.Err != nil {
			agents[i].Error = report.Err.Error()
			agents[i].ErrorKind = services.Kind(report.Err)
		}
	}
	warnings := make([]IdentityWarning, len(view.Mismatches))
	for i, mismatch := range view.Mismatches {
		warnings[i] = IdentityWarning{Parent: mismatch.Path(), IDs: mismatch.IDs}
	}
	return CategoriesResponse{
		RequestID:       view.RequestID,
		Path:            nonNilPath(view.Path),
		MinimumCopies:   view.MinimumCopies,
		UnderReplicated: view.UnderReplicated,
		Items:           FromFlagged(view.Forest),
		Agents:          agents,
		Warnings:        warnings,
	}
}

// FromItem converts an item view.
func FromItem(view manager.ItemView) ItemResponse {
	agents := make([]AgentItem, len(view.Agents))
	for i, row := range view.Agents {
		agents[i] = AgentItem{
			Agent:           row.Agent,
			Item:            FromLookup(row.Item),
			Reachable:       row.Reachable(),
			SyncStatus:      string(row.Status),
			Ignored:         row.Ignore.Ignored,
			IgnoreReachable: row.Ignore.Reachable,
		}
		if row.Err != nil {
			agents[i].Error = row.Err.Error()
			agents[i].ErrorKind = services.Kind(row.Err)
		}
	}
	return ItemResponse{
		RequestID:             view.RequestID,
		Path:                  nonNilPath(view.Path),
		MinimumCopies:         view.MinimumCopies,
		Item:                  FromLookup(view.Item),
		HasInsufficientCopies: view.HasInsufficientCopies,
		Agents:                agents,
	}
}

// FromAgentDetail converts an agent detail view.
func FromAgentDetail(view manager.AgentDetailView) AgentDetailResponse {
	children := make([]ChildRow, len(view.Children))
	for i, child := range view.Children {
		children[i] = ChildRow{
			Name:    child.Name,
			Present: child.Present,
			SizeKB:  child.SizeKB,
			Items:   child.Items,
			Partial: child.Partial,
		}
	}
	resp := AgentDetailResponse{
		RequestID:  view.RequestID,
		Agent:      view.Agent,
		Path:       nonNilPath(view.Path),
		SyncStatus: string(view.Status),
		Reachable:  view.Err == nil,
		Item:       FromLookup(view.Item),
		Children:   children,
	}
	if view.Err != nil {
		resp.Error = view.Err.Error()
	}
	return resp
}

// FromMutation converts a mutation view.
func FromMutation(view manager.MutationView) MutationResponse {
	return MutationResponse{
		RequestID: view.RequestID,
		Agent:     view.Agent,
		Path:      nonNilPath(view.Path),
		Success:   view.Success,
		Message:   view.Message,
		AgentPath: view.AgentPath,
	}
}

// FromHistory converts journal entries.
func FromHistory(entries []journal.Entry) HistoryResponse {
	out := make([]HistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = HistoryEntry{
			ID:        entry.ID,
			RequestID: entry.RequestID,
			Agent:     entry.Agent,
			Operation: string(entry.Operation),
			Path:      entry.Path(),
			Success:   entry.Success,
			Message:   entry.Message,
			ErrorKind: entry.ErrorKind,
		}
		if !entry.CreatedAt.IsZero() {
			out[i].CreatedAt = entry.CreatedAt.UTC().Format(dateTimeFormat)
		}
	}
	return HistoryResponse{Entries: out}
}

func nonNilPath(path []string) []string {
	if path == nil {
		return []string{}
	}
	return path
}
