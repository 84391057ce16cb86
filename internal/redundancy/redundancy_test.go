package redundancy_test

import (
	"testing"

	"shelfsync/internal/entity"
	"shelfsync/internal/redundancy"
)

func tree() entity.Entity {
	return entity.Entity{
		ID:        "movies",
		CopyCount: 3,
		Items: []entity.Entity{
			{ID: "Movie A", CopyCount: 3, Items: []entity.Entity{{ID: "a.mkv", Leaf: true, CopyCount: 1}}},
			{ID: "Movie B", CopyCount: 3, Leaf: true},
		},
	}
}

func TestHasInsufficientCopies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		node    entity.Entity
		minimum int
		want    bool
	}{
		{name: "deep leaf below threshold", node: tree(), minimum: 2, want: true},
		{name: "threshold of one", node: tree(), minimum: 1, want: false},
		{name: "root below threshold", node: entity.Entity{ID: "x", CopyCount: 1}, minimum: 2, want: true},
		{name: "all sufficient", node: entity.Entity{ID: "x", CopyCount: 2, Items: []entity.Entity{{ID: "y", CopyCount: 2}}}, minimum: 2, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := redundancy.HasInsufficientCopies(tc.node, tc.minimum); got != tc.want {
				t.Fatalf("HasInsufficientCopies = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAnnotateMatchesPredicate(t *testing.T) {
	t.Parallel()

	flagged := redundancy.Annotate([]entity.Entity{tree()}, 2)
	if len(flagged) != 1 || !flagged[0].HasInsufficientCopies {
		t.Fatalf("expected root flagged, got %+v", flagged)
	}
	movieA, movieB := flagged[0].Items[0], flagged[0].Items[1]
	if !movieA.HasInsufficientCopies || !movieA.Items[0].HasInsufficientCopies {
		t.Fatal("expected Movie A and its file flagged")
	}
	if movieB.HasInsufficientCopies {
		t.Fatal("Movie B should not be flagged")
	}

	var check func(f redundancy.Flagged)
	check = func(f redundancy.Flagged) {
		if f.HasInsufficientCopies != redundancy.HasInsufficientCopies(f.Entity, 2) {
			t.Fatalf("annotation disagrees with predicate for %q", f.Entity.ID)
		}
		for _, child := range f.Items {
			check(child)
		}
	}
	check(flagged[0])
}

func TestCount(t *testing.T) {
	t.Parallel()

	if got := redundancy.Count([]entity.Entity{tree()}, 2); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
}
