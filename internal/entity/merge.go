package entity

import "sort"

// Policy carries the caller's choices for a merge. The zero value sorts
// children by display name.
type Policy struct {
	Less Comparator
}

func (p Policy) less() Comparator {
	if p.Less == nil {
		return ByName
	}
	return p.Less
}

// Merge consolidates two reports of the same item. Children are matched by id
// and merged recursively; copy counts add, sizes are recomputed from children
// so duplicated content is not double counted. An operand with an empty id is
// treated as absent and the other operand is returned unchanged. Absent
// children contribute nothing, and repeated ids within one operand's children
// are collapsed before matching.
func Merge(self, other Entity, p Policy) Entity {
	if self.Absent() {
		return other
	}
	if other.Absent() {
		return self
	}

	selfOrder, selfByID := collapse(self.Items)
	otherOrder, otherByID := collapse(other.Items)

	merged := selfByID
	order := selfOrder
	for _, id := range otherOrder {
		item := otherByID[id]
		if existing, ok := merged[id]; ok {
			merged[id] = Merge(existing, item, p)
			continue
		}
		merged[id] = item
		order = append(order, id)
	}

	var children []Entity
	if len(order) > 0 {
		children = make([]Entity, 0, len(order))
		for _, id := range order {
			children = append(children, merged[id])
		}
		SortEntities(children, p.less())
	}

	var size uint64
	switch {
	case len(children) > 0:
		for _, child := range children {
			size += child.SizeKB
		}
	case self.SizeKB > 0:
		size = self.SizeKB
	default:
		size = other.SizeKB
	}

	out := Entity{
		ID:        self.ID,
		Name:      self.Name,
		SizeKB:    size,
		Items:     children,
		Leaf:      self.Leaf && other.Leaf,
		CopyCount: addCopies(self.CopyCount, other.CopyCount),
	}
	if out.ID == "" {
		out.ID = other.ID
	}
	if out.Name == "" {
		out.Name = other.Name
	}
	return out
}

// Collapse drops absent entries from one report's sibling list and keeps the
// last entry for each repeated id, in first-seen position. Copy counts are not
// added: repeats within one report are the same copy.
func Collapse(items []Entity) []Entity {
	order, byID := collapse(items)
	if len(order) == len(items) {
		return items
	}
	out := make([]Entity, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}

func collapse(items []Entity) ([]string, map[string]Entity) {
	byID := make(map[string]Entity, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.Absent() {
			continue
		}
		if _, ok := byID[item.ID]; !ok {
			order = append(order, item.ID)
		}
		byID[item.ID] = item
	}
	return order, byID
}

// MergeForest folds one report's top-level entities into an id-keyed forest,
// merging items already present from earlier reports.
func MergeForest(forest map[string]Entity, items []Entity, p Policy) {
	for _, item := range Collapse(items) {
		if existing, ok := forest[item.ID]; ok {
			forest[item.ID] = Merge(existing, item, p)
			continue
		}
		forest[item.ID] = item
	}
}

// Flatten returns the forest's values sorted recursively with the policy's
// comparator.
func Flatten(forest map[string]Entity, p Policy) []Entity {
	out := make([]Entity, 0, len(forest))
	for _, item := range forest {
		out = append(out, item)
	}
	SortTree(out, p.less())
	return out
}

// SortEntities orders a single level in place.
func SortEntities(items []Entity, less Comparator) {
	if less == nil {
		less = ByName
	}
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
}

// SortTree orders items and all of their descendants in place.
func SortTree(items []Entity, less Comparator) {
	SortEntities(items, less)
	for i := range items {
		SortTree(items[i].Items, less)
	}
}
