// Package identity reports sibling ids that differ byte-wise but name the
// same thing once Unicode normalization, case and surrounding whitespace are
// ignored. Agents on different filesystems can report "Amélie" in NFC and NFD
// forms; consolidation keeps such ids apart, and this package surfaces them
// so an operator can rename one side.
package identity

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"shelfsync/internal/entity"
)

// Mismatch is a group of sibling ids that fold to the same key.
type Mismatch struct {
	// Parent is the id path of the folder holding the siblings; empty for
	// top-level categories.
	Parent []string
	IDs    []string
	Key    string
}

// Path renders the parent path for display.
func (m Mismatch) Path() string {
	if len(m.Parent) == 0 {
		return "/"
	}
	return strings.Join(m.Parent, "/")
}

// Folder computes comparison keys. It is not safe for concurrent use.
type Folder struct {
	caser cases.Caser
}

// NewFolder returns a Folder using Unicode default case folding.
func NewFolder() *Folder {
	return &Folder{caser: cases.Fold()}
}

// Key returns the comparison key for id.
func (f *Folder) Key(id string) string {
	return f.caser.String(norm.NFC.String(strings.TrimSpace(id)))
}

// Check walks forest and returns every mismatch group, ordered by parent
// path then key.
func Check(forest []entity.Entity) []Mismatch {
	f := NewFolder()
	var out []Mismatch
	f.check(nil, forest, &out)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := strings.Join(out[i].Parent, "/"), strings.Join(out[j].Parent, "/")
		if pi != pj {
			return pi < pj
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (f *Folder) check(parent []string, level []entity.Entity, out *[]Mismatch) {
	groups := make(map[string][]string)
	var order []string
	for _, item := range level {
		if item.ID == "" {
			continue
		}
		key := f.Key(item.ID)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		if !contains(groups[key], item.ID) {
			groups[key] = append(groups[key], item.ID)
		}
	}
	for _, key := range order {
		ids := groups[key]
		if len(ids) < 2 {
			continue
		}
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		*out = append(*out, Mismatch{Parent: append([]string(nil), parent...), IDs: sorted, Key: key})
	}
	for _, item := range level {
		if len(item.Items) == 0 || item.ID == "" {
			continue
		}
		next := make([]string, len(parent)+1)
		copy(next, parent)
		next[len(parent)] = item.ID
		f.check(next, item.Items, out)
	}
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
