package syncstatus

import (
	"shelfsync/internal/consolidate"
	"shelfsync/internal/entity"
)

// Status is an agent's completeness for one path.
type Status string

const (
	// Unreachable means the agent call failed; nothing is known.
	Unreachable Status = "unreachable"
	// Missing means the agent has nothing, or only zero bytes, at the path.
	Missing Status = "missing"
	// Empty means the agent has the folder but nothing beneath it.
	Empty Status = "empty"
	// InSync means the agent holds every descendant any agent reported. A
	// file nobody reports children for is in sync wherever it is present.
	InSync Status = "in_sync"
	// Partial means the agent holds some but not all known descendants.
	Partial Status = "partial"
)

// Result is one agent's classification.
type Result struct {
	Agent  string
	Status Status
}

// Union collects the descendant ids of every found, reachable contribution.
func Union(contributions []consolidate.Contribution) map[string]struct{} {
	union := make(map[string]struct{})
	for _, c := range contributions {
		item, ok := c.Lookup.Get()
		if c.Err != nil || !ok {
			continue
		}
		for id := range item.DescendantIDs() {
			union[id] = struct{}{}
		}
	}
	return union
}

// Classify assigns exactly one status to an agent's report. Checks run in
// order: unreachable, zero size, no descendants, equal to union. A leaf with
// no descendants is InSync while the union is empty too.
func Classify(item entity.Lookup, reachable bool, union map[string]struct{}) Status {
	if !reachable {
		return Unreachable
	}
	if item.SizeKB() == 0 {
		return Missing
	}
	ids := item.Entity.DescendantIDs()
	if len(ids) == 0 {
		if item.Entity.Leaf && len(union) == 0 {
			return InSync
		}
		return Empty
	}
	if sameSet(ids, union) {
		return InSync
	}
	return Partial
}

// Calculate classifies every contribution, preserving order.
func Calculate(contributions []consolidate.Contribution) []Result {
	union := Union(contributions)
	out := make([]Result, len(contributions))
	for i, c := range contributions {
		out[i] = Result{Agent: c.Agent, Status: Classify(c.Lookup, c.Reachable(), union)}
	}
	return out
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
