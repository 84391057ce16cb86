package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"shelfsync/internal/api"
	"shelfsync/internal/entity"
	"shelfsync/internal/journal"
	"shelfsync/internal/logging"
	"shelfsync/internal/manager"
	"shelfsync/internal/services"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	manager *manager.Manager
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(bind, token string, mgr *manager.Manager, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(bind),
		logger:  logger,
		manager: mgr,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/categories", authMiddleware(token, srv.handleCategories))
	mux.HandleFunc("/api/items", authMiddleware(token, srv.handleItems))
	mux.HandleFunc("/api/agent-detail", authMiddleware(token, srv.handleAgentDetail))
	mux.HandleFunc("/api/ignore", authMiddleware(token, srv.handleIgnore))
	mux.HandleFunc("/api/delete", authMiddleware(token, srv.handleDelete))
	mux.HandleFunc("/api/history", authMiddleware(token, srv.handleHistory))
	srv.handler = mux
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.server = nil
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStatus(s.manager.Status()))
}

func (s *apiServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	path := entity.SplitPath(r.URL.Query().Get("path"))
	view, err := s.manager.Categories(r.Context(), path)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromCategories(view))
}

func (s *apiServer) handleItems(w http.ResponseWriter, r *http.Request) {
	var req api.ItemRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	view, err := s.manager.Item(r.Context(), req.ItemPath)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromItem(view))
}

func (s *apiServer) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	var req api.AgentRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	view, err := s.manager.AgentDetail(r.Context(), req.AgentName, req.ItemPath)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromAgentDetail(view))
}

func (s *apiServer) handleIgnore(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.manager.Ignore)
}

func (s *apiServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.handleMutation(w, r, s.manager.Delete)
}

type mutationFunc func(ctx context.Context, agent string, path []string) (manager.MutationView, error)

// handleMutation answers 200 whenever the agent was reached, with success
// false and the agent's message when it refused.
func (s *apiServer) handleMutation(w http.ResponseWriter, r *http.Request, fn mutationFunc) {
	var req api.AgentRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	view, err := fn(r.Context(), req.AgentName, req.ItemPath)
	switch {
	case err == nil, errors.Is(err, services.ErrOperation):
		s.writeJSON(w, http.StatusOK, api.FromMutation(view))
	case errors.Is(err, services.ErrValidation):
		s.writeFailure(w, err)
	default:
		s.writeJSON(w, statusForError(err), api.FromMutation(view))
	}
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	filter := journal.Filter{Agent: strings.TrimSpace(query.Get("agent"))}
	if value := strings.TrimSpace(query.Get("limit")); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	entries, err := s.manager.History(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromHistory(entries))
}

func (s *apiServer) decodePost(w http.ResponseWriter, r *http.Request, out any) bool {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(out); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrTransport), errors.Is(err, services.ErrProtocol), errors.Is(err, services.ErrOperation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeFailure(w http.ResponseWriter, err error) {
	s.writeJSON(w, statusForError(err), api.ErrorResponse{Error: err.Error(), Kind: services.Kind(err)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
