package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"shelfsync/internal/entity"
	"shelfsync/internal/logging"
	"shelfsync/internal/services"
)

const (
	// DefaultTimeout applies when no timeout is configured.
	DefaultTimeout = 5 * time.Second

	apiKeyHeader    = "X-API-Key"
	apiPrefix       = "/api/v1/"
	maxResponseSize = 64 << 20
)

// HTTPDoer describes the HTTP client used to reach agents.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Endpoint identifies one agent.
type Endpoint struct {
	Name     string
	Hostname string
	APIKey   string
}

// Client issues requests to a single agent.
type Client struct {
	endpoint Endpoint
	baseURL  string
	timeout  time.Duration
	http     HTTPDoer
	logger   *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a client for endpoint. Hostnames are "host[:port]" and are
// reached over plain http; a hostname that already carries a scheme is used
// as the base URL unchanged.
func New(endpoint Endpoint, opts ...Option) *Client {
	endpoint.Name = strings.TrimSpace(endpoint.Name)
	endpoint.Hostname = strings.TrimRight(strings.TrimSpace(endpoint.Hostname), "/")
	endpoint.APIKey = strings.TrimSpace(endpoint.APIKey)

	base := endpoint.Hostname
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	client := &Client{
		endpoint: endpoint,
		baseURL:  base,
		timeout:  DefaultTimeout,
		http:     http.DefaultClient,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "agentclient").With(logging.String(logging.FieldAgent, endpoint.Name))
	return client
}

// Name returns the agent name.
func (c *Client) Name() string {
	return c.endpoint.Name
}

// URL returns the absolute URL for an agent API endpoint.
func (c *Client) URL(endpoint string) string {
	return c.baseURL + apiPrefix + strings.TrimLeft(endpoint, "/")
}

// Categories fetches the agent's full category forest.
func (c *Client) Categories(ctx context.Context) ([]entity.Entity, error) {
	var resp categoriesResponse
	if err := c.call(ctx, "list categories", http.MethodGet, "categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ItemInfo fetches the subtree at path. A 404 or an empty item yields
// entity.Missing with no error.
func (c *Client) ItemInfo(ctx context.Context, path []string) (entity.Lookup, error) {
	var resp itemResponse
	err := c.call(ctx, "item info", http.MethodPost, "items", itemRequest{ItemPath: path}, &resp)
	if StatusCode(err) == http.StatusNotFound {
		return entity.Missing(), nil
	}
	if err != nil {
		return entity.Missing(), err
	}
	if resp.Item == nil {
		return entity.Missing(), nil
	}
	return entity.Present(*resp.Item), nil
}

// IgnoreStatusBulk asks for the ignore flag of every target in one request.
func (c *Client) IgnoreStatusBulk(ctx context.Context, targets []entity.Target) ([]IgnoreStatus, error) {
	var resp ignoreStatusBulkResponse
	if err := c.call(ctx, "ignore status", http.MethodPost, "ignore-status-bulk", ignoreStatusBulkRequest{Items: targets}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// IgnoreStatus reports whether path is ignored on the agent. A response with
// no rows counts as not ignored.
func (c *Client) IgnoreStatus(ctx context.Context, path []string) (bool, error) {
	target, ok := entity.TargetFor(path)
	if !ok {
		return false, c.invalidPath("ignore status")
	}
	rows, err := c.IgnoreStatusBulk(ctx, []entity.Target{target})
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].Ignored, nil
}

// Ignore adds path to the agent's exclusion list.
func (c *Client) Ignore(ctx context.Context, path []string) (MutationResult, error) {
	return c.mutate(ctx, "ignore", "ignore", path)
}

// Delete removes path from the agent's disk.
func (c *Client) Delete(ctx context.Context, path []string) (MutationResult, error) {
	return c.mutate(ctx, "delete", "delete", path)
}

func (c *Client) mutate(ctx context.Context, op, endpoint string, path []string) (MutationResult, error) {
	target, ok := entity.TargetFor(path)
	if !ok {
		return MutationResult{}, c.invalidPath(op)
	}
	var resp mutationResponse
	if err := c.call(ctx, op, http.MethodPost, endpoint, target, &resp); err != nil {
		return MutationResult{}, err
	}
	result := resp.result()
	if !result.Success {
		return result, &Error{Agent: c.endpoint.Name, Op: op, Kind: services.ErrOperation, Message: result.Message}
	}
	return result, nil
}

func (c *Client) invalidPath(op string) error {
	return &Error{Agent: c.endpoint.Name, Op: op, Kind: services.ErrValidation, Message: "path has no non-empty component"}
}

func (c *Client) call(ctx context.Context, op, method, endpoint string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Agent: c.endpoint.Name, Op: op, Kind: services.ErrProtocol, Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint), reader)
	if err != nil {
		return &Error{Agent: c.endpoint.Name, Op: op, Kind: services.ErrTransport, Message: "build request", Err: err}
	}
	req.Header.Set(apiKeyHeader, c.endpoint.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Agent: c.endpoint.Name, Op: op, Kind: transportKind(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &Error{Agent: c.endpoint.Name, Op: op, Kind: transportKind(err), StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("agent call completed",
		logging.String(logging.FieldOperation, op),
		logging.Int("status", resp.StatusCode),
		logging.Duration("duration", time.Since(started)),
	)

	if resp.StatusCode >= http.StatusMultipleChoices || resp.StatusCode < http.StatusOK {
		return &Error{Agent: c.endpoint.Name, Op: op, Kind: services.ErrProtocol, StatusCode: resp.StatusCode, Message: snippet(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Agent: c.endpoint.Name, Op: op, Kind: services.ErrProtocol, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}
