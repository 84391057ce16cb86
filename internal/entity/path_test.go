package entity_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"shelfsync/internal/entity"
)

func TestTargetFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   []string
		want   entity.Target
		wantOK bool
	}{
		{"empty", nil, entity.Target{}, false},
		{"only blanks", []string{"", ""}, entity.Target{}, false},
		{"category only", []string{"movies"}, entity.Target{CategoryID: "movies", FolderPath: []string{}}, true},
		{"nested", []string{"", "tv", "Show", "", "Season 1"}, entity.Target{CategoryID: "tv", FolderPath: []string{"Show", "Season 1"}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := entity.TargetFor(tc.path)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected target (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitPathKeepsComponentsVerbatim(t *testing.T) {
	t.Parallel()

	got := entity.SplitPath("/movies//Movie A /")
	if diff := cmp.Diff([]string{"movies", "Movie A "}, got); diff != "" {
		t.Fatalf("unexpected split (-want +got):\n%s", diff)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	forest := []entity.Entity{
		folder("tv", 1, folder("Show", 1, leaf("e1", 1, 1))),
		folder("movies", 1),
	}
	got, ok := entity.Find(forest, []string{"tv", "Show"})
	if !ok || got.ID != "Show" || len(got.Items) != 1 {
		t.Fatalf("unexpected find result: %+v ok=%v", got, ok)
	}
	if _, ok := entity.Find(forest, []string{"tv", "Missing"}); ok {
		t.Fatal("expected missing path to fail")
	}
	if _, ok := entity.Find(forest, nil); ok {
		t.Fatal("expected empty path to fail")
	}
}

func TestComparatorFor(t *testing.T) {
	t.Parallel()

	if _, err := entity.ComparatorFor("name"); err != nil {
		t.Fatalf("name: %v", err)
	}
	if _, err := entity.ComparatorFor(" Folders_First "); err != nil {
		t.Fatalf("folders_first: %v", err)
	}
	if _, err := entity.ComparatorFor("size"); err == nil {
		t.Fatal("expected error for unknown order")
	}
}
