package entity

import "math"

// Entity is a file or folder as reported by one agent, or the consolidated
// view of several.
type Entity struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SizeKB    uint64   `json:"size_kb"`
	Items     []Entity `json:"items"`
	Leaf      bool     `json:"leaf"`
	CopyCount uint8    `json:"copy_count"`
}

// Absent reports whether e is the wire encoding of "this agent had nothing".
func (e Entity) Absent() bool {
	return e.ID == ""
}

// WithCopyCount returns a copy of e with every node's CopyCount set to count.
func (e Entity) WithCopyCount(count uint8) Entity {
	out := e
	out.CopyCount = count
	if e.Items != nil {
		out.Items = make([]Entity, len(e.Items))
		for i, child := range e.Items {
			out.Items[i] = child.WithCopyCount(count)
		}
	}
	return out
}

// Walk visits e and every descendant depth-first. Returning false from fn
// stops the walk.
func (e Entity) Walk(fn func(Entity) bool) bool {
	if !fn(e) {
		return false
	}
	for _, child := range e.Items {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// DescendantIDs returns the set of non-empty ids strictly below e.
func (e Entity) DescendantIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, child := range e.Items {
		child.Walk(func(n Entity) bool {
			if n.ID != "" {
				ids[n.ID] = struct{}{}
			}
			return true
		})
	}
	return ids
}

// Child returns the direct child with the given id.
func (e Entity) Child(id string) (Entity, bool) {
	for _, child := range e.Items {
		if child.ID == id {
			return child, true
		}
	}
	return Entity{}, false
}

func addCopies(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(sum)
}
