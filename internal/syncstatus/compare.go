package syncstatus

import (
	"sort"

	"shelfsync/internal/consolidate"
)

// ChildComparison describes one child name from the point of view of a
// single agent.
type ChildComparison struct {
	Name    string
	Present bool
	// SizeKB and Items are the agent's own values; zero when not present.
	SizeKB uint64
	Items  int
	// Partial is set when the agent has the child but smaller than the
	// largest copy any agent reported.
	Partial bool
}

// CompareChildren lists the union of child names across all reachable
// contributions and reports how agent's copy measures up, sorted by name.
// ok is false when agent has no contribution.
func CompareChildren(agent string, contributions []consolidate.Contribution) (rows []ChildComparison, ok bool) {
	var target *consolidate.Contribution
	for i := range contributions {
		if contributions[i].Agent == agent {
			target = &contributions[i]
			break
		}
	}
	if target == nil {
		return nil, false
	}

	maxSize := make(map[string]uint64)
	for _, c := range contributions {
		item, found := c.Lookup.Get()
		if c.Err != nil || !found {
			continue
		}
		for _, child := range item.Items {
			if child.SizeKB > maxSize[child.Name] {
				maxSize[child.Name] = child.SizeKB
			} else if _, seen := maxSize[child.Name]; !seen {
				maxSize[child.Name] = child.SizeKB
			}
		}
	}

	own := target.Lookup.Entity.Items
	if !target.Lookup.Found || target.Err != nil {
		own = nil
	}
	rows = make([]ChildComparison, 0, len(maxSize))
	for name, largest := range maxSize {
		row := ChildComparison{Name: name}
		for _, child := range own {
			if child.Name == name {
				row.Present = true
				row.SizeKB = child.SizeKB
				row.Items = len(child.Items)
				break
			}
		}
		row.Partial = row.Present && largest > 0 && row.SizeKB < largest
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, true
}
