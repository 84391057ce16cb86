package manager_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shelfsync/internal/agentclient"
	"shelfsync/internal/config"
	"shelfsync/internal/entity"
	"shelfsync/internal/journal"
	"shelfsync/internal/manager"
	"shelfsync/internal/services"
	"shelfsync/internal/syncstatus"
	"shelfsync/internal/testsupport"
)

func fullMovies() entity.Entity {
	return entity.Entity{
		ID:     "movies",
		Name:   "Movies",
		SizeKB: 80,
		Items: []entity.Entity{
			{ID: "Movie A", Name: "Movie A", SizeKB: 50, Leaf: true},
			{ID: "Movie B", Name: "Movie B", SizeKB: 30, Leaf: true},
		},
	}
}

func partialMovies() entity.Entity {
	return entity.Entity{
		ID:     "movies",
		Name:   "Movies",
		SizeKB: 50,
		Items: []entity.Entity{
			{ID: "Movie A", Name: "Movie A", SizeKB: 50, Leaf: true},
		},
	}
}

func newManager(t *testing.T, cfg *config.Config, opts ...manager.Option) *manager.Manager {
	t.Helper()
	opts = append([]manager.Option{manager.WithHTTPClient(testsupport.HTTPClient(t))}, opts...)
	mgr, err := manager.New(cfg, opts...)
	if err != nil {
		t.Fatalf("manager.New: %v", err)
	}
	return mgr
}

func TestNewRejectsUnknownSortOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSortOrder("by-mood"))
	if _, err := manager.New(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestStatusMakesNoAgentCalls(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent), testsupport.WithMinimumCopies(3))
	mgr := newManager(t, cfg, manager.WithVersion("1.2.3"))

	got := mgr.Status()
	want := manager.StatusView{
		Version:       "1.2.3",
		MinimumCopies: 3,
		Agents:        []manager.AgentInfo{{Name: "nas-1", Hostname: agent.Hostname()}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("status mismatch (-want +got):\n%s", diff)
	}
	if calls := agent.Calls(); len(calls) != 0 {
		t.Fatalf("expected no agent calls, got %d", len(calls))
	}
}

func TestCategoriesFlagsUnderReplicatedSubtrees(t *testing.T) {
	full := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	partial := testsupport.NewFakeAgent(t, "nas-2", partialMovies())
	down := testsupport.NewFakeAgent(t, "nas-3", fullMovies())
	down.FailWith(http.StatusBadGateway)
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(full, partial, down), testsupport.WithMinimumCopies(2))
	mgr := newManager(t, cfg)

	view, err := mgr.Categories(context.Background(), nil)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if view.RequestID == "" {
		t.Fatal("expected a request id")
	}
	if len(view.Forest) != 1 {
		t.Fatalf("expected one category, got %d", len(view.Forest))
	}
	movies := view.Forest[0]
	if movies.Entity.CopyCount != 2 || !movies.HasInsufficientCopies {
		t.Fatalf("movies: copies=%d flagged=%v", movies.Entity.CopyCount, movies.HasInsufficientCopies)
	}
	flags := map[string]bool{}
	for _, child := range movies.Items {
		flags[child.Entity.ID] = child.HasInsufficientCopies
	}
	if diff := cmp.Diff(map[string]bool{"Movie A": false, "Movie B": true}, flags); diff != "" {
		t.Fatalf("child flags mismatch (-want +got):\n%s", diff)
	}
	if len(view.Agents) != 3 || view.Agents[2].Reachable() {
		t.Fatalf("expected nas-3 reported unreachable, got %+v", view.Agents)
	}
	if len(view.Mismatches) != 0 {
		t.Fatalf("unexpected mismatches: %+v", view.Mismatches)
	}
}

func TestCategoriesSubtree(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent))
	mgr := newManager(t, cfg)

	view, err := mgr.Categories(context.Background(), []string{"movies", ""})
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if diff := cmp.Diff([]string{"movies"}, view.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	var ids []string
	for _, child := range view.Forest {
		ids = append(ids, child.Entity.ID)
	}
	if diff := cmp.Diff([]string{"Movie A", "Movie B"}, ids); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}

	if _, err := mgr.Categories(context.Background(), []string{"music"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCategoriesReportsIdentityMismatches(t *testing.T) {
	nfc := testsupport.NewFakeAgent(t, "nas-1", entity.Entity{ID: "caf\u00e9", Name: "Caf\u00e9", SizeKB: 1})
	nfd := testsupport.NewFakeAgent(t, "nas-2", entity.Entity{ID: "cafe\u0301", Name: "Cafe\u0301", SizeKB: 1})
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(nfc, nfd))
	mgr := newManager(t, cfg)

	view, err := mgr.Categories(context.Background(), nil)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(view.Forest) != 2 {
		t.Fatalf("expected ids kept apart, got %d roots", len(view.Forest))
	}
	if len(view.Mismatches) != 1 || view.Mismatches[0].Path() != "/" {
		t.Fatalf("expected one top-level mismatch, got %+v", view.Mismatches)
	}
}

func TestItemAttachesSyncAndIgnoreStatus(t *testing.T) {
	full := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	partial := testsupport.NewFakeAgent(t, "nas-2", partialMovies())
	partial.SetIgnored([]string{"movies"}, true)
	absent := testsupport.NewFakeAgent(t, "nas-3")
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(full, partial, absent), testsupport.WithMinimumCopies(2))
	mgr := newManager(t, cfg)

	view, err := mgr.Item(context.Background(), []string{"movies"})
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	item, ok := view.Item.Get()
	if !ok || item.CopyCount != 2 || item.SizeKB != 80 {
		t.Fatalf("unexpected merged item %+v", view.Item)
	}
	if !view.HasInsufficientCopies {
		t.Fatal("expected Movie B to trip the redundancy flag")
	}

	type row struct {
		Agent   string
		Status  syncstatus.Status
		Ignored bool
	}
	got := make([]row, len(view.Agents))
	for i, a := range view.Agents {
		got[i] = row{Agent: a.Agent, Status: a.Status, Ignored: a.Ignore.Ignored}
	}
	want := []row{
		{Agent: "nas-1", Status: syncstatus.InSync},
		{Agent: "nas-2", Status: syncstatus.Partial, Ignored: true},
		{Agent: "nas-3", Status: syncstatus.Missing},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("agent rows mismatch (-want +got):\n%s", diff)
	}
}

func TestItemRejectsEmptyPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := newManager(t, cfg)

	if _, err := mgr.Item(context.Background(), []string{"", ""}); !errors.Is(err, manager.ErrInvalidPath) {
		t.Fatalf("expected invalid path, got %v", err)
	}
}

func TestAgentDetail(t *testing.T) {
	full := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	partial := testsupport.NewFakeAgent(t, "nas-2", partialMovies())
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(full, partial))
	mgr := newManager(t, cfg)

	view, err := mgr.AgentDetail(context.Background(), " nas-2 ", []string{"movies"})
	if err != nil {
		t.Fatalf("AgentDetail: %v", err)
	}
	if view.Agent != "nas-2" || view.Status != syncstatus.Partial {
		t.Fatalf("unexpected detail header %+v", view)
	}
	want := []syncstatus.ChildComparison{
		{Name: "Movie A", Present: true, SizeKB: 50},
		{Name: "Movie B"},
	}
	if diff := cmp.Diff(want, view.Children); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}

	if _, err := mgr.AgentDetail(context.Background(), "nas-9", []string{"movies"}); !errors.Is(err, manager.ErrUnknownAgent) {
		t.Fatalf("expected unknown agent, got %v", err)
	}
}

func TestIgnoreForwardsAndJournals(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent), testsupport.WithJournal(true))
	store := testsupport.MustOpenJournal(t, cfg)
	mgr := newManager(t, cfg, manager.WithJournal(store))
	ctx := context.Background()

	path := []string{"movies", "Movie B"}
	view, err := mgr.Ignore(ctx, "nas-1", path)
	if err != nil {
		t.Fatalf("Ignore: %v", err)
	}
	if !view.Success || view.AgentPath != "/srv/media/movies/Movie B" {
		t.Fatalf("unexpected mutation view %+v", view)
	}
	if !agent.Ignored(path) {
		t.Fatal("agent did not record the ignore")
	}

	entries, err := mgr.History(ctx, journal.Filter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.RequestID != view.RequestID || entry.Operation != journal.OpIgnore || !entry.Success {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.CategoryID != "movies" || entry.Path() != "movies/Movie B" {
		t.Fatalf("unexpected entry target %+v", entry)
	}
}

func TestDeleteReturnsAgentMessageVerbatim(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	agent.RejectMutations("folder is locked by another process")
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent), testsupport.WithJournal(true))
	store := testsupport.MustOpenJournal(t, cfg)
	mgr := newManager(t, cfg, manager.WithJournal(store))
	ctx := context.Background()

	view, err := mgr.Delete(ctx, "nas-1", []string{"movies", "Movie A"})
	if !errors.Is(err, services.ErrOperation) {
		t.Fatalf("expected operation error, got %v", err)
	}
	if got := agentclient.AgentMessage(err); got != "folder is locked by another process" {
		t.Fatalf("agent message = %q", got)
	}
	if view.Success || view.Message != "folder is locked by another process" {
		t.Fatalf("unexpected mutation view %+v", view)
	}

	var deletes int
	for _, call := range agent.Calls() {
		if call.Path == "/api/v1/delete" {
			deletes++
		}
	}
	if deletes != 1 {
		t.Fatalf("expected exactly one delete call, got %d", deletes)
	}

	entries, err := mgr.History(ctx, journal.Filter{Agent: "nas-1"})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 || entries[0].Success || entries[0].ErrorKind != "operation" {
		t.Fatalf("unexpected journal entries %+v", entries)
	}
}

func TestMutationValidation(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent))
	mgr := newManager(t, cfg)
	ctx := context.Background()

	tests := []struct {
		name  string
		agent string
		path  []string
		want  error
	}{
		{name: "unknown agent", agent: "nas-2", path: []string{"movies"}, want: manager.ErrUnknownAgent},
		{name: "empty path", agent: "nas-1", path: []string{""}, want: manager.ErrInvalidPath},
		{name: "nil path", agent: "nas-1", want: manager.ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Ignore(ctx, tt.agent, tt.path); !errors.Is(err, tt.want) {
				t.Fatalf("Ignore err = %v, want %v", err, tt.want)
			}
			if !errors.Is(tt.want, services.ErrValidation) {
				t.Fatalf("%v should be a validation error", tt.want)
			}
		})
	}
	if calls := agent.Calls(); len(calls) != 0 {
		t.Fatalf("invalid requests reached the agent: %+v", calls)
	}
}

func TestHistoryWithoutJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	mgr := newManager(t, cfg)

	if _, err := mgr.History(context.Background(), journal.Filter{}); !errors.Is(err, manager.ErrJournalDisabled) {
		t.Fatalf("expected journal disabled, got %v", err)
	}
}

func TestRequestIDFromContextIsKept(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1", fullMovies())
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent))
	mgr := newManager(t, cfg)

	ctx := services.WithRequestID(context.Background(), "req-42")
	view, err := mgr.Item(ctx, []string{"movies"})
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if view.RequestID != "req-42" {
		t.Fatalf("request id = %q", view.RequestID)
	}
}
