// Package redundancy flags subtrees held by fewer agents than required.
package redundancy

import "shelfsync/internal/entity"

// HasInsufficientCopies reports whether node or anything beneath it has fewer
// than minimum copies. The whole subtree is scanned even when node itself is
// sufficiently replicated.
func HasInsufficientCopies(node entity.Entity, minimum int) bool {
	if int(node.CopyCount) < minimum {
		return true
	}
	for _, child := range node.Items {
		if HasInsufficientCopies(child, minimum) {
			return true
		}
	}
	return false
}

// Flagged pairs an entity with its redundancy verdict, recursively.
type Flagged struct {
	Entity                entity.Entity
	HasInsufficientCopies bool
	Items                 []Flagged
}

// Annotate returns a tree parallel to forest with each node flagged.
func Annotate(forest []entity.Entity, minimum int) []Flagged {
	out := make([]Flagged, len(forest))
	for i, node := range forest {
		out[i] = annotate(node, minimum)
	}
	return out
}

// annotate computes flags bottom-up so each node is visited once.
func annotate(node entity.Entity, minimum int) Flagged {
	flagged := Flagged{Entity: node, HasInsufficientCopies: int(node.CopyCount) < minimum}
	if len(node.Items) > 0 {
		flagged.Items = make([]Flagged, len(node.Items))
		for i, child := range node.Items {
			flagged.Items[i] = annotate(child, minimum)
			if flagged.Items[i].HasInsufficientCopies {
				flagged.HasInsufficientCopies = true
			}
		}
	}
	return flagged
}

// Count returns how many nodes in forest are themselves below minimum.
func Count(forest []entity.Entity, minimum int) int {
	total := 0
	for _, node := range forest {
		node.Walk(func(n entity.Entity) bool {
			if int(n.CopyCount) < minimum {
				total++
			}
			return true
		})
	}
	return total
}
