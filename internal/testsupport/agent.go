package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shelfsync/internal/config"
	"shelfsync/internal/entity"
)

// Call records one request received by a FakeAgent.
type Call struct {
	Method string
	Path   string
	APIKey string
	Body   []byte
}

// FakeAgent is a scriptable in-process agent speaking the /api/v1 protocol.
// Items are resolved from the configured categories unless overridden with
// SetItem.
type FakeAgent struct {
	Name   string
	APIKey string

	server *httptest.Server

	mu              sync.Mutex
	categories      []entity.Entity
	items           map[string]*entity.Entity
	ignored         map[string]bool
	failStatus      int
	rawBody         string
	delay           time.Duration
	mutationFailure string
	calls           []Call
}

// NewFakeAgent starts a fake agent that is shut down when the test ends.
func NewFakeAgent(t testing.TB, name string, categories ...entity.Entity) *FakeAgent {
	t.Helper()

	agent := &FakeAgent{
		Name:       name,
		APIKey:     name + "-key",
		categories: categories,
		items:      make(map[string]*entity.Entity),
		ignored:    make(map[string]bool),
	}
	agent.server = httptest.NewServer(http.HandlerFunc(agent.serve))
	t.Cleanup(agent.server.Close)
	return agent
}

// Hostname returns the base URL the agent listens on.
func (a *FakeAgent) Hostname() string {
	return a.server.URL
}

// ConfigAgent returns the config entry pointing at this agent.
func (a *FakeAgent) ConfigAgent() config.Agent {
	return config.Agent{Name: a.Name, Hostname: a.Hostname(), APIKey: a.APIKey}
}

// SetCategories replaces the agent's tree.
func (a *FakeAgent) SetCategories(categories ...entity.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.categories = categories
}

// SetItem overrides the item returned for path. A nil item makes the agent
// answer 200 with a null item.
func (a *FakeAgent) SetItem(path []string, item *entity.Entity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[strings.Join(entity.CleanPath(path), "/")] = item
}

// SetIgnored marks path as ignored.
func (a *FakeAgent) SetIgnored(path []string, ignored bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ignored[strings.Join(entity.CleanPath(path), "/")] = ignored
}

// Ignored reports whether path has been ignored, either via SetIgnored or a
// forwarded ignore request.
func (a *FakeAgent) Ignored(path []string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ignored[strings.Join(entity.CleanPath(path), "/")]
}

// FailWith makes every request answer with status. Zero restores normal
// behaviour.
func (a *FakeAgent) FailWith(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failStatus = status
}

// RespondRaw makes every request answer 200 with body verbatim.
func (a *FakeAgent) RespondRaw(body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rawBody = body
}

// Delay holds every response for d or until the client gives up.
func (a *FakeAgent) Delay(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

// RejectMutations makes ignore and delete answer success=false with message.
func (a *FakeAgent) RejectMutations(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutationFailure = message
}

// Calls returns the requests received so far.
func (a *FakeAgent) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Call, len(a.calls))
	copy(out, a.calls)
	return out
}

func (a *FakeAgent) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: r.Method, Path: r.URL.Path, APIKey: r.Header.Get("X-API-Key"), Body: body})
	delay := a.delay
	failStatus := a.failStatus
	rawBody := a.rawBody
	a.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if r.Header.Get("X-API-Key") != a.APIKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
		return
	}
	if failStatus != 0 {
		writeJSON(w, failStatus, map[string]string{"error": "scripted failure"})
		return
	}
	if rawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, rawBody)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/categories":
		a.mu.Lock()
		items := a.categories
		a.mu.Unlock()
		if items == nil {
			items = []entity.Entity{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/items":
		a.serveItem(w, body)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/ignore-status-bulk":
		a.serveIgnoreStatus(w, body)
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/ignore":
		a.serveMutation(w, body, "ignored_path")
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/delete":
		a.serveMutation(w, body, "deleted_path")
	default:
		http.NotFound(w, r)
	}
}

func (a *FakeAgent) serveItem(w http.ResponseWriter, body []byte) {
	var req struct {
		ItemPath []string `json:"item_path"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	key := strings.Join(entity.CleanPath(req.ItemPath), "/")

	a.mu.Lock()
	override, overridden := a.items[key]
	categories := a.categories
	a.mu.Unlock()

	if overridden {
		writeJSON(w, http.StatusOK, map[string]any{"item": override})
		return
	}
	found, ok := entity.Find(categories, req.ItemPath)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": found})
}

func (a *FakeAgent) serveIgnoreStatus(w http.ResponseWriter, body []byte) {
	var req struct {
		Items []entity.Target `json:"items"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	type row struct {
		CategoryID string   `json:"category_id"`
		FolderPath []string `json:"folder_path"`
		Ignored    bool     `json:"ignored"`
	}
	rows := make([]row, 0, len(req.Items))
	a.mu.Lock()
	for _, target := range req.Items {
		key := strings.Join(append([]string{target.CategoryID}, target.FolderPath...), "/")
		rows = append(rows, row{CategoryID: target.CategoryID, FolderPath: target.FolderPath, Ignored: a.ignored[key]})
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}

func (a *FakeAgent) serveMutation(w http.ResponseWriter, body []byte, pathField string) {
	var target entity.Target
	if err := json.Unmarshal(body, &target); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	key := strings.Join(append([]string{target.CategoryID}, target.FolderPath...), "/")

	a.mu.Lock()
	failure := a.mutationFailure
	if failure == "" && pathField == "ignored_path" {
		a.ignored[key] = true
	}
	a.mu.Unlock()

	if failure != "" {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": failure})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok", pathField: "/srv/media/" + key})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// HTTPClient returns a client whose idle connections are closed when the
// test ends, so goroutine leak checks stay quiet.
func HTTPClient(t testing.TB) *http.Client {
	t.Helper()
	transport := &http.Transport{DisableKeepAlives: true}
	t.Cleanup(transport.CloseIdleConnections)
	return &http.Client{Transport: transport}
}
