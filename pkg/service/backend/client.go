package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
)

const (
	// DefaultBaseURL is used when no backend URL is configured
	DefaultBaseURL = "http://localhost:8080/api/v1"
	// DefaultTimeout bounds every request. A request that times out fails as a network error.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 10 << 20
)

// Client talks to the triage backend REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.IncidentAPI = (*Client)(nil)

// Option is a functional option for configuring Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, including its timeout
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// New creates a Client for the API rooted at baseURL (e.g. http://localhost:8080/api/v1)
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("backend URL must be http or https", goerr.V("url", baseURL))
	}
	if u.Host == "" {
		return nil, goerr.New("backend URL has no host", goerr.V("url", baseURL))
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// BaseURL returns the API root this client sends requests to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches all incidents
func (c *Client) List(ctx context.Context) ([]*model.Incident, error) {
	var incidents []*model.Incident
	if err := c.do(ctx, http.MethodGet, "/incidents", nil, &incidents, true); err != nil {
		return nil, err
	}
	if incidents == nil {
		incidents = []*model.Incident{}
	}
	return incidents, nil
}

// Get fetches one incident
func (c *Client) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	path, err := incidentPath(http.MethodGet, id)
	if err != nil {
		return nil, err
	}

	var incident model.Incident
	if err := c.do(ctx, http.MethodGet, path, nil, &incident, true); err != nil {
		return nil, err
	}
	return &incident, nil
}

// Create submits a new incident. The backend assigns the ID and the AI labels.
func (c *Client) Create(ctx context.Context, draft model.Draft) (*model.Incident, error) {
	var incident model.Incident
	if err := c.do(ctx, http.MethodPost, "/incidents", draft, &incident, true); err != nil {
		return nil, err
	}
	return &incident, nil
}

// Update sends the fields set in patch
func (c *Client) Update(ctx context.Context, id types.IncidentID, patch model.Patch) (*model.Incident, error) {
	path, err := incidentPath(http.MethodPut, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, newClientError(http.MethodPut, path, model.ErrEmptyPatch, "Nothing to update")
	}

	var incident model.Incident
	if err := c.do(ctx, http.MethodPut, path, patch, &incident, true); err != nil {
		return nil, err
	}
	return &incident, nil
}

// Remove deletes an incident
func (c *Client) Remove(ctx context.Context, id types.IncidentID) error {
	path, err := incidentPath(http.MethodDelete, id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil, false)
}

// Health returns the backend status object as-is
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/health", nil, &raw, false); err != nil {
		return nil, err
	}

	status := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return status, nil
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		// Not a JSON object; hand back the body text
		return map[string]any{"raw": strings.TrimSpace(string(raw))}, nil
	}
	return status, nil
}

func incidentPath(method string, id types.IncidentID) (string, error) {
	if id.IsEmpty() {
		return "", newClientError(method, "/incidents/", model.ErrIncidentIDMissing, "Incident ID is required")
	}
	return "/incidents/" + url.PathEscape(id.String()), nil
}

// do performs one request. When unwrap is true the `{data: ...}` envelope is
// removed from the response body before decoding into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, unwrap bool) error {
	logger := ctxlog.From(ctx)
	reqID := model.RequestIDOrNew(ctx)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newClientError(method, path, err, "failed to encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newClientError(method, path, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID.String())

	logger.Debug("API request",
		"method", method,
		"path", path,
		"request_id", reqID,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("API request failed",
			"method", method,
			"path", path,
			"request_id", reqID,
			"error", err,
		)
		return newNetworkError(method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newNetworkError(method, path, err)
	}

	logger.Info("API response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := newStatusError(method, path, resp.StatusCode, bodyMessage(respBody))
		logger.Warn("API error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"error", err,
		)
		return err
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	payload := json.RawMessage(respBody)
	if unwrap {
		payload = unwrapEnvelope(respBody)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = payload
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return newClientError(method, path, err, "failed to decode response body")
	}
	return nil
}

// unwrapEnvelope returns the `data` member of a `{data: ...}` body. Bare bodies
// and envelopes whose data is null are returned unchanged.
func unwrapEnvelope(body []byte) json.RawMessage {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return body
	}
	return env.Data
}

// bodyMessage extracts the "message" member of an error body, if any
func bodyMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
