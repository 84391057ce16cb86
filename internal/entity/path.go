package entity

import "strings"

// CleanPath drops empty components from a path as sent by a browser or CLI.
func CleanPath(path []string) []string {
	out := make([]string, 0, len(path))
	for _, part := range path {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// SplitPath turns "movies/Movie A" into its components. Components are kept
// verbatim apart from dropping empties produced by leading, trailing, or
// doubled separators.
func SplitPath(raw string) []string {
	return CleanPath(strings.Split(raw, "/"))
}

// Target is the (category, folder) addressing used by agent mutation and
// ignore-status endpoints.
type Target struct {
	CategoryID string   `json:"category_id"`
	FolderPath []string `json:"folder_path"`
}

// TargetFor splits a path into its category and the folder path beneath it.
// ok is false when the path has no non-empty component.
func TargetFor(path []string) (Target, bool) {
	clean := CleanPath(path)
	if len(clean) == 0 {
		return Target{}, false
	}
	folder := make([]string, len(clean)-1)
	copy(folder, clean[1:])
	return Target{CategoryID: clean[0], FolderPath: folder}, true
}

// Find descends through forest following path ids.
func Find(forest []Entity, path []string) (Entity, bool) {
	clean := CleanPath(path)
	if len(clean) == 0 {
		return Entity{}, false
	}
	current := Entity{Items: forest}
	for _, id := range clean {
		next, ok := current.Child(id)
		if !ok {
			return Entity{}, false
		}
		current = next
	}
	return current, true
}
