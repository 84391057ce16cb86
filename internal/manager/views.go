package manager

import (
	"shelfsync/internal/consolidate"
	"shelfsync/internal/entity"
	"shelfsync/internal/identity"
	"shelfsync/internal/ignorestatus"
	"shelfsync/internal/redundancy"
	"shelfsync/internal/syncstatus"
)

// AgentInfo describes a configured agent without its key.
type AgentInfo struct {
	Name     string
	Hostname string
}

// StatusView summarizes manager configuration.
type StatusView struct {
	Version       string
	MinimumCopies int
	Agents        []AgentInfo
	Journal       bool
}

// CategoriesView is a consolidated forest with redundancy flags.
type CategoriesView struct {
	RequestID string
	// Path is empty for the full forest, otherwise the node whose children
	// are listed.
	Path            []string
	MinimumCopies   int
	UnderReplicated int
	Forest          []redundancy.Flagged
	Agents          []consolidate.AgentReport
	Mismatches      []identity.Mismatch
}

// AgentItem is one agent's view of an item path.
type AgentItem struct {
	Agent  string
	Item   entity.Lookup
	Err    error
	Status syncstatus.Status
	Ignore ignorestatus.Status
}

// Reachable reports whether the item lookup succeeded.
func (a AgentItem) Reachable() bool {
	return a.Err == nil
}

// ItemView is the consolidated item plus each agent's contribution.
type ItemView struct {
	RequestID             string
	Path                  []string
	MinimumCopies         int
	Item                  entity.Lookup
	HasInsufficientCopies bool
	Agents                []AgentItem
}

// AgentDetailView compares one agent's children against every agent.
type AgentDetailView struct {
	RequestID string
	Agent     string
	Path      []string
	Status    syncstatus.Status
	Item      entity.Lookup
	Err       error
	Children  []syncstatus.ChildComparison
}

// MutationView is the outcome of a forwarded ignore or delete.
type MutationView struct {
	RequestID string
	Agent     string
	Path      []string
	Success   bool
	Message   string
	// AgentPath is the agent-local path affected, when reported.
	AgentPath string
}
