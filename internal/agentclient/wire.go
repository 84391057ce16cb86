package agentclient

import "shelfsync/internal/entity"

type categoriesResponse struct {
	Items []entity.Entity `json:"items"`
}

type itemRequest struct {
	ItemPath []string `json:"item_path"`
}

type itemResponse struct {
	Item *entity.Entity `json:"item"`
}

type ignoreStatusBulkRequest struct {
	Items []entity.Target `json:"items"`
}

// IgnoreStatus is one row of an ignore-status-bulk response.
type IgnoreStatus struct {
	CategoryID string   `json:"category_id"`
	FolderPath []string `json:"folder_path"`
	Ignored    bool     `json:"ignored"`
}

type ignoreStatusBulkResponse struct {
	Items []IgnoreStatus `json:"items"`
}

// MutationResult is the agent's reply to an ignore or delete request.
type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Path is the agent-local path that was ignored or deleted, when reported.
	Path string `json:"-"`
}

type mutationResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	IgnoredPath string `json:"ignored_path,omitempty"`
	DeletedPath string `json:"deleted_path,omitempty"`
}

func (r mutationResponse) result() MutationResult {
	path := r.IgnoredPath
	if path == "" {
		path = r.DeletedPath
	}
	return MutationResult{Success: r.Success, Message: r.Message, Path: path}
}
