package api_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"shelfsync/internal/api"
	"shelfsync/internal/consolidate"
	"shelfsync/internal/entity"
	"shelfsync/internal/ignorestatus"
	"shelfsync/internal/journal"
	"shelfsync/internal/manager"
	"shelfsync/internal/redundancy"
	"shelfsync/internal/services"
	"shelfsync/internal/syncstatus"
)

func TestFromCategories(t *testing.T) {
	t.Parallel()

	movies := entity.Entity{
		ID: "movies", Name: "Movies", SizeKB: 50, CopyCount: 1,
		Items: []entity.Entity{{ID: "Movie A", Name: "Movie A", SizeKB: 50, Leaf: true, CopyCount: 1}},
	}
	view := manager.CategoriesView{
		RequestID:       "req-1",
		MinimumCopies:   2,
		UnderReplicated: 2,
		Forest:          redundancy.Annotate([]entity.Entity{movies}, 2),
		Agents: []consolidate.AgentReport{
			{Agent: "nas-1", Items: 1},
			{Agent: "nas-2", Err: services.Wrap(services.ErrTimeout, "agentclient", "categories", "deadline", nil)},
		},
	}

	got := api.FromCategories(view)
	want := api.CategoriesResponse{
		RequestID:       "req-1",
		Path:            []string{},
		MinimumCopies:   2,
		UnderReplicated: 2,
		Items: []api.Node{{
			ID: "movies", Name: "Movies", SizeKB: 50, CopyCount: 1, HasInsufficientCopies: true,
			Items: []api.Node{{ID: "Movie A", Name: "Movie A", SizeKB: 50, Leaf: true, CopyCount: 1, HasInsufficientCopies: true, Items: []api.Node{}}},
		}},
		Agents: []api.AgentReachability{
			{Agent: "nas-1", Reachable: true, Items: 1},
			{Agent: "nas-2", Error: view.Agents[1].Err.Error(), ErrorKind: "timeout"},
		},
		Warnings: []api.IdentityWarning{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestFromItemEncodesMissingAsNull(t *testing.T) {
	t.Parallel()

	view := manager.ItemView{
		RequestID: "req-2",
		Path:      []string{"movies", "Movie Z"},
		Item:      entity.Missing(),
		Agents: []manager.AgentItem{{
			Agent:  "nas-1",
			Item:   entity.Missing(),
			Status: syncstatus.Missing,
			Ignore: ignorestatus.Status{Agent: "nas-1", Reachable: true},
		}},
	}

	payload, err := json.Marshal(api.FromItem(view))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(payload)
	for _, fragment := range []string{`"item":null`, `"sync_status":"missing"`, `"ignore_reachable":true`, `"reachable":true`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected %s in %s", fragment, body)
		}
	}
}

func TestFromHistory(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	got := api.FromHistory([]journal.Entry{{
		ID:         7,
		RequestID:  "req-3",
		Agent:      "nas-1",
		Operation:  journal.OpDelete,
		CategoryID: "movies",
		FolderPath: []string{"Movie A"},
		Success:    false,
		Message:    "locked",
		ErrorKind:  "operation",
		CreatedAt:  created,
	}})
	want := api.HistoryResponse{Entries: []api.HistoryEntry{{
		ID:        7,
		RequestID: "req-3",
		Agent:     "nas-1",
		Operation: "delete",
		Path:      "movies/Movie A",
		Message:   "locked",
		ErrorKind: "operation",
		CreatedAt: "2026-03-04T05:06:07.008Z",
	}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}
