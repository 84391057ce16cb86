package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// AgentInfo describes a configured agent. API keys are never exposed.
type AgentInfo struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
}

// StatusResponse summarizes the manager configuration.
type StatusResponse struct {
	Version       string      `json:"version"`
	MinimumCopies int         `json:"minimum_copies"`
	Agents        []AgentInfo `json:"agents"`
	Journal       bool        `json:"journal"`
}

// Entity mirrors the agent wire format for a file or folder.
type Entity struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SizeKB    uint64   `json:"size_kb"`
	Leaf      bool     `json:"leaf"`
	CopyCount uint8    `json:"copy_count"`
	Items     []Entity `json:"items"`
}

// Node is a consolidated entity with its redundancy flag.
type Node struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	SizeKB                uint64 `json:"size_kb"`
	Leaf                  bool   `json:"leaf"`
	CopyCount             uint8  `json:"copy_count"`
	HasInsufficientCopies bool   `json:"has_insufficient_copies"`
	Items                 []Node `json:"items"`
}

// AgentReachability reports whether an agent answered a listing.
type AgentReachability struct {
	Agent     string `json:"agent"`
	Reachable bool   `json:"reachable"`
	Items     int    `json:"items"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// IdentityWarning lists sibling ids that only differ by Unicode
// normalization, case or surrounding whitespace.
type IdentityWarning struct {
	Parent string   `json:"parent"`
	IDs    []string `json:"ids"`
}

// CategoriesResponse is the consolidated forest, or one level of it.
type CategoriesResponse struct {
	RequestID     string   `json:"request_id"`
	Path          []string `json:"path"`
	MinimumCopies int      `json:"minimum_copies"`
	// UnderReplicated counts nodes at or below Path whose own copy count is
	// below MinimumCopies.
	UnderReplicated int                 `json:"under_replicated"`
	Items           []Node              `json:"items"`
	Agents          []AgentReachability `json:"agents"`
	Warnings        []IdentityWarning   `json:"warnings"`
}

// ItemRequest addresses one path.
type ItemRequest struct {
	ItemPath []string `json:"item_path"`
}

// AgentItem is one agent's row in an item response.
type AgentItem struct {
	Agent           string  `json:"agent"`
	Item            *Entity `json:"item"`
	Reachable       bool    `json:"reachable"`
	Error           string  `json:"error,omitempty"`
	ErrorKind       string  `json:"error_kind,omitempty"`
	SyncStatus      string  `json:"sync_status"`
	Ignored         bool    `json:"ignored"`
	IgnoreReachable bool    `json:"ignore_reachable"`
}

// ItemResponse is the consolidated item plus every agent's contribution.
type ItemResponse struct {
	RequestID             string      `json:"request_id"`
	Path                  []string    `json:"path"`
	MinimumCopies         int         `json:"minimum_copies"`
	Item                  *Entity     `json:"item"`
	HasInsufficientCopies bool        `json:"has_insufficient_copies"`
	Agents                []AgentItem `json:"agents"`
}

// AgentRequest addresses one path on one agent.
type AgentRequest struct {
	AgentName string   `json:"agent_name"`
	ItemPath  []string `json:"item_path"`
}

// ChildRow compares one child name on an agent against every agent.
type ChildRow struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	SizeKB  uint64 `json:"size_kb"`
	Items   int    `json:"items"`
	Partial bool   `json:"partial"`
}

// AgentDetailResponse lists the children of a path from one agent's point of view.
type AgentDetailResponse struct {
	RequestID  string     `json:"request_id"`
	Agent      string     `json:"agent"`
	Path       []string   `json:"path"`
	SyncStatus string     `json:"sync_status"`
	Reachable  bool       `json:"reachable"`
	Error      string     `json:"error,omitempty"`
	Item       *Entity    `json:"item"`
	Children   []ChildRow `json:"children"`
}

// MutationResponse is the outcome of a forwarded ignore or delete.
type MutationResponse struct {
	RequestID string   `json:"request_id"`
	Agent     string   `json:"agent"`
	Path      []string `json:"path"`
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	AgentPath string   `json:"agent_path,omitempty"`
}

// HistoryEntry is one journaled mutation.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	RequestID string `json:"request_id"`
	Agent     string `json:"agent"`
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	CreatedAt string `json:"created_at"`
}

// HistoryResponse wraps journal entries, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
