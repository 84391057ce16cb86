package entity

import (
	"fmt"
	"strings"
)

// Comparator reports whether a sorts before b.
type Comparator func(a, b Entity) bool

// ByName orders by display name, falling back to id so the order is total.
func ByName(a, b Entity) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}

// FoldersFirst lists non-leaf entries before leaves, then by name.
func FoldersFirst(a, b Entity) bool {
	if a.Leaf != b.Leaf {
		return !a.Leaf
	}
	return ByName(a, b)
}

const (
	SortByName       = "name"
	SortFoldersFirst = "folders_first"
)

// ComparatorFor resolves a configured sort order name.
func ComparatorFor(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SortByName:
		return ByName, nil
	case SortFoldersFirst:
		return FoldersFirst, nil
	default:
		return nil, fmt.Errorf("unknown sort order %q", name)
	}
}
